package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Billing  BillingConfig
	Retry    RetryConfig
}

type ServerConfig struct {
	AppEnv         string
	HTTPPort       string
	GRPCPort       string
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	LockTimeoutMS   int
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SettingsTTL int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	InboundTopic  string
	OutboundTopic string
	GroupID       string
}

// BillingConfig holds fallbacks used when a garage has no settings row.
type BillingConfig struct {
	DefaultTaxRate   string
	InvoicePrefix    string
	PaymentTermsDays int
}

type RetryConfig struct {
	Attempts  int
	BackoffMS int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			HTTPPort:       getEnv("HTTP_PORT", ":8080"),
			GRPCPort:       getEnv("GRPC_PORT", ":8082"),
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "garage"),
			Password:        getEnv("POSTGRES_PASSWORD", "garage"),
			DBName:          getEnv("POSTGRES_DB", "garagemaster"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			LockTimeoutMS:   getEnvInt("POSTGRES_LOCK_TIMEOUT_MS", 5000),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			SettingsTTL: getEnvInt("REDIS_SETTINGS_TTL", 300),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", true),
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			InboundTopic:  getEnv("KAFKA_TOPIC_PURCHASING", "purchasing.events"),
			OutboundTopic: getEnv("KAFKA_TOPIC_GARAGE", "garage.events"),
			GroupID:       getEnv("KAFKA_GROUP_INVENTORY", "garage-inventory"),
		},
		Billing: BillingConfig{
			DefaultTaxRate:   getEnv("BILLING_DEFAULT_TAX_RATE", "0"),
			InvoicePrefix:    getEnv("BILLING_INVOICE_PREFIX", "INV"),
			PaymentTermsDays: getEnvInt("BILLING_PAYMENT_TERMS_DAYS", 7),
		},
		Retry: RetryConfig{
			Attempts:  getEnvInt("TX_RETRY_ATTEMPTS", 3),
			BackoffMS: getEnvInt("TX_RETRY_BACKOFF_MS", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
