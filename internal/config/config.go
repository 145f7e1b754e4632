package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Account flows
	VerifyTokenExpiry time.Duration
	ResetTokenExpiry  time.Duration

	// Invitations
	InviteTTL time.Duration

	// Media
	StorageDriver  string // local, s3
	UploadDir      string
	UploadURLPath  string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3PublicURL    string

	// Email (Amazon SES)
	SESRegion    string
	SESFromEmail string
	SESFromName  string

	// Server
	Port        string
	CORSOrigins string
	FrontendURL string
	AppEnv      string
	SentryDSN   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "family_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		VerifyTokenExpiry: parseDuration(getEnv("VERIFY_TOKEN_EXPIRY", "24h"), 24*time.Hour),
		ResetTokenExpiry:  parseDuration(getEnv("RESET_TOKEN_EXPIRY", "1h"), time.Hour),

		InviteTTL: parseDuration(getEnv("INVITE_TTL", "168h"), 7*24*time.Hour),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		UploadURLPath:  getEnv("UPLOAD_URL_PATH", "/uploads"),
		MaxUploadBytes: parseInt64(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10*1024*1024),
		S3Bucket:       getEnv("S3_BUCKET_NAME", ""),
		S3Region:       getEnv("AWS_REGION", "eu-west-3"),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),

		SESRegion:    getEnv("SES_REGION", getEnv("AWS_REGION", "eu-west-3")),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Family"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

// DSN builds the connection string for the configured driver. For sqlite
// DBName is the database file path (or ":memory:").
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "mysql":
		return c.DBUser + ":" + c.DBPassword +
			"@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName +
			"?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return c.DBName
	default:
		return "host=" + c.DBHost +
			" user=" + c.DBUser +
			" password=" + c.DBPassword +
			" dbname=" + c.DBName +
			" port=" + c.DBPort +
			" sslmode=" + c.DBSSLMode +
			" TimeZone=UTC"
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of postgres, mysql, sqlite")
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET_NAME is required when STORAGE_DRIVER=s3")
		}
	default:
		return errors.New("STORAGE_DRIVER must be local or s3")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
