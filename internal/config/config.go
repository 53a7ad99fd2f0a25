// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	CORSAllowedOrigins []string      `mapstructure:"-"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Identity
	FirebaseServiceAccountKeyPath string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket         string        `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	AuthDevSecret                 string        `mapstructure:"AUTH_DEV_SECRET"`
	AuthDevTokenTTL               time.Duration `mapstructure:"AUTH_DEV_TOKEN_TTL_MINUTES"`

	// File storage
	StorageDriver string `mapstructure:"STORAGE_DRIVER"` // "local" or "firebase"
	StoragePath   string `mapstructure:"STORAGE_PATH"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	// Elasticsearch Configuration. Empty URL disables search indexing.
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Geocoding
	GeocoderBaseURL   string        `mapstructure:"GEOCODER_BASE_URL"`
	GeocoderUserAgent string        `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderTimeout   time.Duration `mapstructure:"GEOCODER_TIMEOUT_SECONDS"`
	GeocoderCacheTTL  time.Duration `mapstructure:"GEOCODER_CACHE_TTL_HOURS"`

	// OTP and mail delivery
	OTPTTL         time.Duration `mapstructure:"OTP_TTL_MINUTES"`
	ResendAPIKey   string        `mapstructure:"RESEND_API_KEY"`
	ResendAPIURL   string        `mapstructure:"RESEND_API_URL"`
	SMTPHost       string        `mapstructure:"SMTP_HOST"`
	SMTPPort       int           `mapstructure:"SMTP_PORT"`
	SMTPUser       string        `mapstructure:"SMTP_USER"`
	SMTPPassword   string        `mapstructure:"SMTP_PASSWORD"`
	EmailsFromAddr string        `mapstructure:"EMAILS_FROM_EMAIL"`
	EmailsFromName string        `mapstructure:"EMAILS_FROM_NAME"`

	// EduCredits
	CreditsBookDonated     int `mapstructure:"CREDITS_BOOK_DONATED"`
	CreditsFeedbackGiven   int `mapstructure:"CREDITS_FEEDBACK"`
	CreditsProfileComplete int `mapstructure:"CREDITS_PROFILE"`

	// Cron Jobs
	OTPCleanupJobSchedule    string `mapstructure:"OTP_CLEANUP_JOB_SCHEDULE"`
	BulkReconcileJobSchedule string `mapstructure:"BULK_RECONCILE_JOB_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "educycle")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")
	v.SetDefault("AUTH_DEV_SECRET", "")
	v.SetDefault("AUTH_DEV_TOKEN_TTL_MINUTES", 60)

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_PATH", "./uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8000")

	v.SetDefault("ELASTICSEARCH_URL", "")

	v.SetDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "EduCycle/1.0")
	v.SetDefault("GEOCODER_TIMEOUT_SECONDS", 10)
	v.SetDefault("GEOCODER_CACHE_TTL_HOURS", 24)

	v.SetDefault("OTP_TTL_MINUTES", 10)
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_API_URL", "https://api.resend.com/emails")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("EMAILS_FROM_EMAIL", "noreply@educycle.app")
	v.SetDefault("EMAILS_FROM_NAME", "EduCycle")

	v.SetDefault("CREDITS_BOOK_DONATED", 50)
	v.SetDefault("CREDITS_FEEDBACK", 25)
	v.SetDefault("CREDITS_PROFILE", 10)

	v.SetDefault("OTP_CLEANUP_JOB_SCHEDULE", "@hourly")
	v.SetDefault("BULK_RECONCILE_JOB_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.AuthDevTokenTTL = time.Duration(v.GetInt("AUTH_DEV_TOKEN_TTL_MINUTES")) * time.Minute
	cfg.GeocoderTimeout = time.Duration(v.GetInt("GEOCODER_TIMEOUT_SECONDS")) * time.Second
	cfg.GeocoderCacheTTL = time.Duration(v.GetInt("GEOCODER_CACHE_TTL_HOURS")) * time.Hour
	cfg.OTPTTL = time.Duration(v.GetInt("OTP_TTL_MINUTES")) * time.Minute

	cfg.CORSAllowedOrigins = splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBSource == "" {
			cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
				cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)
		}
	case "sqlite":
		if cfg.DBSource == "" {
			cfg.DBSource = "educycle.db"
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", cfg.DBDriver)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if cfg.StorageDriver != "local" && cfg.StorageDriver != "firebase" {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q (expected local or firebase)", cfg.StorageDriver)
	}
	if cfg.StorageDriver == "firebase" && strings.TrimSpace(cfg.FirebaseStorageBucket) == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET is required when STORAGE_DRIVER=firebase")
	}

	// A configured key path must point at a real file; an empty one runs the API without Firebase.
	if path := strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath); path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", path)
		}
	}

	return &cfg, nil
}

// FirebaseEnabled reports whether a Firebase service account is configured.
func (c *Config) FirebaseEnabled() bool {
	return strings.TrimSpace(c.FirebaseServiceAccountKeyPath) != ""
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
