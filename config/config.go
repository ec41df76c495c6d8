package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	ChainsideClientID     string
	ChainsideClientSecret string
	Sandbox               bool
	Confirmations         int // blockchain confirmations before settlement: 1, 3 or 6
	GatewayEnabled        bool

	StoreBaseURL string // public base URL of the storefront, used to build callback URLs

	KafkaBrokers       string
	PaymentEventTopic  string
	PaymentSNSTopicARN string // optional; empty disables the SNS mirror
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8087"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		ChainsideClientID:     os.Getenv("CHAINSIDE_CLIENT_ID"),
		ChainsideClientSecret: os.Getenv("CHAINSIDE_CLIENT_SECRET"),
		Sandbox:               getEnv("CHAINSIDE_SANDBOX", "no") == "yes",
		Confirmations:         confirmations(getEnv("CHAINSIDE_CONFIRMATIONS", "1")),
		GatewayEnabled:        getEnv("GATEWAY_ENABLED", "yes") == "yes",

		StoreBaseURL: getEnv("STORE_BASE_URL", "http://localhost:3000"),

		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		PaymentEventTopic:  getEnv("PAYMENT_EVENT_TOPIC", "payment-events"),
		PaymentSNSTopicARN: os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required Postgres environment variables")
	}

	return cfg, nil
}

// HasCredentials reports whether Chainside API credentials are configured.
// Missing credentials do not block startup; initiation calls will fail
// upstream until they are set.
func (c *Config) HasCredentials() bool {
	return c.ChainsideClientID != "" && c.ChainsideClientSecret != ""
}

// confirmations coerces the configured tier to one of the values the
// processor accepts.
func confirmations(v string) int {
	switch v {
	case "3":
		return 3
	case "6":
		return 6
	default:
		return 1
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
