package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by STORE_BACKEND
const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendMongo    = "mongo"
)

// Config holds all configuration for the service
type Config struct {
	// App
	AppEnv string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Store
	StoreBackend string
	PgHost       string
	PgPort       string
	PgUser       string
	PgPassword   string
	PgDB         string
	SQLitePath   string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration

	// Upstream flight-data provider
	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderAPIHost string
	ProviderTimeout time.Duration

	// Auth
	JWTSecret      string
	APIKeysEnabled bool

	// Collection
	SupportedAirports         []string
	CollectionScheduleEnabled bool
	CollectionInterval        time.Duration
}

// LoadConfig loads configuration from a .env file (if present) and environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 600)) * time.Second,

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
		PgHost:       getEnv("PG_HOST", "localhost"),
		PgPort:       getEnv("PG_PORT", "5432"),
		PgUser:       getEnv("PG_USER", "postgres"),
		PgPassword:   getEnv("PG_PASSWORD", ""),
		PgDB:         getEnv("PG_DB", "flightsync"),
		SQLitePath:   getEnv("SQLITE_PATH", "flightsync.db"),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flightsync"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 600)) * time.Second,

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://aerodatabox.p.rapidapi.com"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderAPIHost: getEnv("PROVIDER_API_HOST", "aerodatabox.p.rapidapi.com"),
		ProviderTimeout: time.Duration(getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,

		JWTSecret:      getEnv("JWT_SECRET", ""),
		APIKeysEnabled: getEnvAsBool("API_KEYS_ENABLED", false),

		SupportedAirports:         getEnvAsList("SUPPORTED_AIRPORTS", []string{"CEB", "MNL", "DVO", "ILO", "BCD"}),
		CollectionScheduleEnabled: getEnvAsBool("COLLECTION_SCHEDULE_ENABLED", false),
		CollectionInterval:        time.Duration(getEnvAsInt("COLLECTION_INTERVAL_HOURS", 24)) * time.Hour,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN builds the postgres connection string from the PG_* settings
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.PgUser, c.PgPassword, c.PgHost, c.PgPort, c.PgDB)
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendPostgres, StoreBackendSQLite, StoreBackendMongo:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTSecret == "" && !c.APIKeysEnabled {
		return fmt.Errorf("JWT_SECRET must be set when API keys are disabled")
	}
	if len(c.SupportedAirports) == 0 {
		return fmt.Errorf("SUPPORTED_AIRPORTS must list at least one airport")
	}
	if c.CollectionScheduleEnabled && c.CollectionInterval <= 0 {
		return fmt.Errorf("COLLECTION_INTERVAL_HOURS must be positive when COLLECTION_SCHEDULE_ENABLED is set")
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
