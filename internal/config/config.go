package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds host configuration, loaded from the environment with an
// optional .env file.
type Config struct {
	Port        string
	Environment string
	AuthSecret  string

	// SlotBackend selects where the message log persists:
	// file, redis, postgres or memory.
	SlotBackend string
	SlotPath    string
	RedisAddr   string
	PostgresDSN string

	AMQPURL       string
	AuditExchange string
	OTLPEndpoint  string

	DebugRoutes bool

	// DelayScale multiplies every simulated delay. 1.0 keeps the stock
	// timings; 0 makes operations immediate.
	DelayScale float64
}

// Load reads configuration, preferring process env over .env.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using system environment")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8083"),
		Environment:   getEnv("APP_ENV", "development"),
		AuthSecret:    getEnv("AUTH_SECRET", "nexus-dev-secret"),
		SlotBackend:   getEnv("SLOT_BACKEND", "file"),
		SlotPath:      getEnv("SLOT_PATH", "nexus_messages.json"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		AMQPURL:       getEnv("AMQP_URL", ""),
		AuditExchange: getEnv("AUDIT_EXCHANGE", "nexus.audit"),
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", ""),
		DebugRoutes:   getEnvBool("DEBUG_ROUTES", false),
		DelayScale:    getEnvFloat("DELAY_SCALE", 1.0),
	}

	if cfg.SlotBackend == "postgres" && cfg.PostgresDSN == "" {
		log.Fatal("SLOT_BACKEND=postgres requires POSTGRES_DSN")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("invalid bool for %s: %q, using %v", key, val, fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil || parsed < 0 {
		log.Printf("invalid float for %s: %q, using %v", key, val, fallback)
		return fallback
	}
	return parsed
}
