package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"venuehub/internal/auth"
	"venuehub/internal/cache"
	"venuehub/internal/database"
	"venuehub/internal/external"
	"venuehub/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	// AppBaseURL is the public frontend URL used in email links.
	AppBaseURL string

	Database      database.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Events        EventsConfig
	NATS          messaging.Config
	Notifications NotificationsConfig
	Auth          auth.Config
	Payment       external.PaymentConfig
	Mail          external.MailConfig
}

// EventsConfig selects how domain events reach the notification dispatcher
type EventsConfig struct {
	// Transport is "inline" (dispatch in-process) or "nats".
	Transport       string
	DispatchTimeout time.Duration
}

// NotificationsConfig selects the notification store
type NotificationsConfig struct {
	// Store is "postgres" or "mongo".
	Store         string
	MongoURI      string
	MongoDatabase string
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "venuehub"),
			Password:           getEnv("DB_PASSWORD", "venuehub"),
			DBName:             getEnv("DB_NAME", "venuehub"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Events: EventsConfig{
			Transport:       getEnv("EVENTS_TRANSPORT", "inline"),
			DispatchTimeout: time.Duration(getEnvInt("EVENTS_DISPATCH_TIMEOUT_SEC", 15)) * time.Second,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "venuehub"),
			ClientID:  getEnv("NATS_CLIENT_ID", "venuehub-api"),
		},

		Notifications: NotificationsConfig{
			Store:         getEnv("NOTIFICATION_STORE", "postgres"),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "venuehub"),
		},

		Auth: auth.Config{
			Secret:   getEnv("JWT_SECRET", "change-me"),
			TokenTTL: time.Duration(getEnvInt("JWT_TTL_MIN", 60*24)) * time.Minute,
			Issuer:   getEnv("JWT_ISSUER", "venuehub"),
			OTPTTL:   time.Duration(getEnvInt("OTP_TTL_MIN", 10)) * time.Minute,
		},

		Payment: external.PaymentConfig{
			BaseURL:     getEnv("PAYMENT_GATEWAY_URL", "https://api.paystack.co"),
			SecretKey:   os.Getenv("PAYMENT_SECRET_KEY"),
			CallbackURL: getEnv("PAYMENT_CALLBACK_URL", ""),
			Currency:    getEnv("PAYMENT_CURRENCY", "NGN"),
			Timeout:     time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 15)) * time.Second,
		},

		Mail: external.MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@venuehub.local"),
			Timeout:  time.Duration(getEnvInt("SMTP_TIMEOUT_SEC", 10)) * time.Second,
		},
	}
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration parses values such as "30s" or "2m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
