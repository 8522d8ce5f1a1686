package router

import (
	"time"

	"maestro/config"
	"maestro/internal/auth"
	"maestro/internal/domain"
	"maestro/internal/handler"
	"maestro/internal/middleware"
	"maestro/internal/repository"
	"maestro/internal/service"
	"maestro/pkg/gcal"
	"maestro/pkg/mailer"
	"maestro/pkg/payment"
	"maestro/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external adapters the router wires into handlers. Tests
// swap in stubs here.
type Deps struct {
	Gateway   payment.Gateway
	Storage   storage.FileStorage
	Scheduler gcal.Scheduler
	Mailer    mailer.Mailer
	Log       *zap.Logger
}

func Setup(cfg *config.Config, db *gorm.DB, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	log := deps.Log

	// Repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	fileRepo := repository.NewStoredFileRepository(db)
	credRepo := repository.NewOAuthCredentialRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	tickets := auth.NewTicketRegistry()

	// Services
	authSvc := service.NewAuthService(userRepo, credRepo, tickets, &cfg.JWT, log)
	checkoutSvc := service.NewCheckoutService(orderRepo, courseRepo, enrollmentRepo, userRepo, deps.Gateway, &cfg.Stripe, log)
	paymentSvc := service.NewPaymentService(orderRepo, courseRepo, enrollmentRepo, userRepo, deps.Mailer, log)
	progressSvc := service.NewProgressService(enrollmentRepo, courseRepo, log)
	assessmentSvc := service.NewAssessmentService(quizRepo, assignmentRepo, enrollmentRepo, courseRepo, userRepo, log)
	certificateSvc := service.NewCertificateService(certificateRepo, enrollmentRepo, courseRepo, userRepo, log)
	sessionSvc := service.NewSessionService(sessionRepo, userRepo, credRepo, deps.Scheduler, &cfg.Calendar, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	googleHandler := handler.NewGoogleOAuthHandler(authSvc, &cfg.OAuth, cfg.Server.BaseURL+"/auth/complete", log)
	courseHandler := handler.NewCourseHandler(courseRepo)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	webhookHandler := handler.NewWebhookHandler(deps.Gateway, paymentSvc, log)
	enrollmentHandler := handler.NewEnrollmentHandler(progressSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	uploadHandler := handler.NewUploadHandler(fileRepo, deps.Storage, log)
	noteHandler := handler.NewNoteHandler(noteRepo)
	healthHandler := handler.NewHealthHandler(db, deps.Storage)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.RequireRole(domain.RoleTeacher, domain.RoleAdmin)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/ticket", authHandler.RedeemTicket)
			authGroup.GET("/google", googleHandler.Redirect)
			authGroup.GET("/google/callback", googleHandler.Callback)
			authGroup.GET("/me", authMw, authHandler.Me)
		}

		// Public catalog and certificate verification.
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/verify/certificate/:serial", certificateHandler.Verify)

		api.POST("/webhooks/stripe", webhookHandler.HandleStripe)

		courses := api.Group("/courses")
		courses.Use(authMw, staffMw)
		{
			courses.POST("", courseHandler.Create)
			courses.PUT("/:id", courseHandler.Update)
			courses.POST("/:id/publish", courseHandler.Publish)
			courses.POST("/:id/lessons", courseHandler.AddLesson)
		}
		api.GET("/teaching/courses", authMw, staffMw, courseHandler.Mine)
		api.GET("/lessons/:lessonId", authMw, courseHandler.GetLesson)

		api.POST("/checkout", authMw, checkoutHandler.Start)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/enrollments", enrollmentHandler.Mine)
			me.GET("/enrollments/:courseId", enrollmentHandler.Get)
			me.POST("/enrollments/:courseId/lessons/:lessonId/complete", enrollmentHandler.CompleteLesson)
			me.DELETE("/enrollments/:courseId/lessons/:lessonId/complete", enrollmentHandler.UncompleteLesson)
			me.POST("/enrollments/:courseId/touch", enrollmentHandler.Touch)
			me.GET("/certificates", certificateHandler.Mine)
			me.GET("/files", uploadHandler.Mine)
			me.GET("/sessions", sessionHandler.Mine)
		}
		api.PATCH("/enrollments/:courseId/status", authMw, adminMw, enrollmentHandler.SetStatus)

		quizzes := api.Group("/quizzes")
		quizzes.Use(authMw)
		{
			quizzes.POST("", staffMw, assessmentHandler.CreateQuiz)
			quizzes.GET("/:id", assessmentHandler.GetQuiz)
			quizzes.POST("/:id/attempts", assessmentHandler.StartAttempt)
			quizzes.GET("/:id/attempts", assessmentHandler.ListAttempts)
		}
		api.POST("/attempts/:attemptId/submit", authMw, assessmentHandler.SubmitAttempt)

		assignments := api.Group("/assignments")
		assignments.Use(authMw)
		{
			assignments.POST("", staffMw, assessmentHandler.CreateAssignment)
			assignments.GET("/:id", assessmentHandler.GetAssignment)
			assignments.POST("/:id/submissions", assessmentHandler.Submit)
			assignments.GET("/:id/submissions", staffMw, assessmentHandler.ListSubmissions)
		}
		api.POST("/submissions/:submissionId/grade", authMw, staffMw, assessmentHandler.GradeSubmission)
		api.POST("/submissions/:submissionId/comments", authMw, assessmentHandler.AddComment)

		api.POST("/certificates", authMw, certificateHandler.Issue)
		api.POST("/certificates/:id/revoke", authMw, staffMw, certificateHandler.Revoke)

		sessions := api.Group("/sessions")
		sessions.Use(authMw)
		{
			sessions.POST("", staffMw, sessionHandler.Schedule)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/students", staffMw, sessionHandler.AddStudent)
			sessions.PATCH("/:id/reschedule", staffMw, sessionHandler.Reschedule)
			sessions.POST("/:id/cancel", staffMw, sessionHandler.Cancel)
			sessions.POST("/:id/complete", staffMw, sessionHandler.Complete)
		}

		api.POST("/uploads", authMw, uploadHandler.Upload)
		api.GET("/uploads/url", authMw, uploadHandler.TemporaryURL)
		api.DELETE("/uploads", authMw, uploadHandler.Delete)

		api.POST("/notes", authMw, staffMw, noteHandler.Create)
		api.GET("/students/:studentId/notes", authMw, noteHandler.ListForStudent)
		api.DELETE("/notes/:id", authMw, noteHandler.Delete)
	}

	return r
}
