package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	OAuth    OAuthConfig
	Stripe   StripeConfig
	Blob     BlobConfig
	Calendar CalendarConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	TicketSecret  string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	TicketExpiry  time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type BlobConfig struct {
	ConnectionString string
	Container        string
	PublicBaseURL    string
	RequestTimeout   time.Duration
	MaxRetries       uint64
}

// CalendarConfig covers the Google Calendar adapter. RefreshBuffer is how
// long before token expiry a credential is considered stale.
type CalendarConfig struct {
	CalendarID     string
	RefreshBuffer  time.Duration
	RequestTimeout time.Duration
	MaxRetries     uint64
}

type MailConfig struct {
	SendGridKey string
	FromAddress string
	FromName    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}
	baseURL := getEnv("APP_BASE_URL", "http://localhost:8080")
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			BaseURL:      baseURL,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "maestro:maestro@tcp(localhost:3306)/maestro?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			TicketSecret:  getEnv("JWT_TICKET_SECRET", "change-me-ticket"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			TicketExpiry:  time.Minute,
			Issuer:        "maestro",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URI", baseURL+"/api/v1/auth/google/callback"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", baseURL+"/checkout/success"),
			CancelURL:     getEnv("CHECKOUT_CANCEL_URL", baseURL+"/checkout/cancel"),
		},
		Blob: BlobConfig{
			ConnectionString: getEnv("AZURE_BLOB_CONNECTION_STRING", ""),
			Container:        getEnv("AZURE_BLOB_CONTAINER", "maestro-lms"),
			PublicBaseURL:    getEnv("AZURE_BLOB_PUBLIC_BASE", ""),
			RequestTimeout:   30 * time.Second,
			MaxRetries:       3,
		},
		Calendar: CalendarConfig{
			CalendarID:     getEnv("GOOGLE_DEFAULT_CALENDAR_ID", "primary"),
			RefreshBuffer:  time.Duration(getEnvInt("OAUTH_REFRESH_BUFFER_SEC", 60)) * time.Second,
			RequestTimeout: 30 * time.Second,
			MaxRetries:     3,
		},
		Mail: MailConfig{
			SendGridKey: getEnv("SENDGRID_API_KEY", ""),
			FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@maestro.app"),
			FromName:    getEnv("MAIL_FROM_NAME", "Maestro Music Lessons"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
