package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maestro/config"
	"maestro/internal/database"
	"maestro/internal/router"
	"maestro/pkg/gcal"
	"maestro/pkg/mailer"
	"maestro/pkg/payment"
	"maestro/pkg/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	database.SeedAdmin(db)

	deps := router.Deps{Log: logger}

	if cfg.Stripe.SecretKey != "" {
		deps.Gateway = payment.NewStripeGateway(&cfg.Stripe)
	} else {
		logger.Warn("stripe not configured, using stub gateway")
		deps.Gateway = &payment.StubGateway{}
	}

	if cfg.Blob.ConnectionString != "" {
		deps.Storage, err = storage.NewAzureBlobStorage(&cfg.Blob, logger)
		if err != nil {
			logger.Fatal("blob storage init failed", zap.Error(err))
		}
	} else {
		logger.Warn("azure blob not configured, using in-memory storage")
		deps.Storage = storage.NewMemoryStorage()
	}

	if cfg.OAuth.GoogleClientID != "" {
		deps.Scheduler = gcal.NewGoogleScheduler(&cfg.OAuth, &cfg.Calendar, logger)
	} else {
		logger.Warn("google oauth not configured, using stub scheduler")
		deps.Scheduler = gcal.NewStubScheduler()
	}

	if cfg.Mail.SendGridKey != "" {
		deps.Mailer = mailer.NewSendGridMailer(&cfg.Mail, logger)
	} else {
		logger.Warn("sendgrid not configured, dropping outbound mail")
		deps.Mailer = &mailer.NoopMailer{}
	}

	engine := router.Setup(cfg, db, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
