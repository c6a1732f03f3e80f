package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultDeliveryCharge = 200
)

type Config struct {
	Port    string
	GinMode string

	LogLevel string
	LogFile  string

	StorageDriver string
	MongoURI      string
	MongoDB       string

	SessionSecret     string
	CookieSecure      bool
	AdminUsername     string
	AdminPasswordHash string
	CORSOrigins       []string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	UploadDir      string
	MaxUploadBytes int64
	DeliveryCharge float64

	RedisHost     string
	RedisPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	KafkaBrokers        []string
	KafkaReconcileTopic string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	NotifyTo     []string

	NotifyWorkers     int
	NotifyMaxAttempts int
	NotifyBackoff     time.Duration
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		zap.S().Info("⚠️ no .env file found, using system environment")
	} else {
		zap.S().Info("✅ .env loaded")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:    env("PORT", "8080"),
		GinMode: env("GIN_MODE", "debug"),

		LogLevel: env("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		StorageDriver: strings.ToLower(env("STORAGE_DRIVER", "mongo")),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       env("MONGO_DB", "myr"),

		SessionSecret:     os.Getenv("SESSION_SECRET"),
		CookieSecure:      cast.ToBool(env("COOKIE_SECURE", "true")),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    env("MINIO_BUCKET", "myr"),
		MinioUseSSL:    cast.ToBool(os.Getenv("MINIO_USE_SSL")),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		UploadDir:      env("UPLOAD_DIR", os.TempDir()),
		MaxUploadBytes: cast.ToInt64(env("MAX_UPLOAD_BYTES", fmt.Sprint(DefaultMaxUploadBytes))),
		DeliveryCharge: cast.ToFloat64(env("DELIVERY_CHARGE", fmt.Sprint(DefaultDeliveryCharge))),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaReconcileTopic: env("KAFKA_RECONCILE_TOPIC", "myr.reconciliation"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     cast.ToInt(env("SMTP_PORT", "587")),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     env("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
		NotifyTo:     splitList(os.Getenv("NOTIFY_TO")),

		NotifyWorkers:     cast.ToInt(env("NOTIFY_WORKERS", "4")),
		NotifyMaxAttempts: cast.ToInt(env("NOTIFY_MAX_ATTEMPTS", "5")),
		NotifyBackoff:     cast.ToDuration(env("NOTIFY_BACKOFF", "2s")),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required")
	}
	if cfg.StorageDriver == "mongo" && cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=mongo")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return cfg, nil
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && len(c.NotifyTo) > 0
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma separated value, trimming blanks and dropping empties.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
