package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Abuse    AbuseConfig
	Email    EmailConfig
	Store    StoreConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// AbuseConfig holds the abuse-engine knobs. The defaults are the product
// constants; the client-side mirror hardcodes the same values, so changing
// them here without shipping a matching front-end leaves the mirror stale.
type AbuseConfig struct {
	MaxFailedAttempts   int
	BlockDuration       time.Duration
	MaxCancelledOrders  int
	SubmitRatePerWindow int
	SubmitRateWindow    time.Duration
	CleanupInterval     time.Duration
	LogRetention        time.Duration
}

type EmailConfig struct {
	Enabled         bool
	AWSRegion       string
	FromAddress     string
	OperatorAddress string
}

// StoreConfig holds storefront settings that end up in user-facing links.
type StoreConfig struct {
	WhatsAppNumber string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "bh1mart"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		},
		Auth: AuthConfig{
			JWTSecret:   jwtSecret,
			TokenExpiry: getEnvAsDuration("ADMIN_TOKEN_EXPIRY", 7*24*time.Hour),
		},
		Abuse: AbuseConfig{
			MaxFailedAttempts:   getEnvAsInt("ABUSE_MAX_FAILED_ATTEMPTS", 2),
			BlockDuration:       getEnvAsDuration("ABUSE_BLOCK_DURATION", 24*time.Hour),
			MaxCancelledOrders:  getEnvAsInt("ABUSE_MAX_CANCELLED_ORDERS", 2),
			SubmitRatePerWindow: getEnvAsInt("SUBMIT_RATE_LIMIT", 5),
			SubmitRateWindow:    getEnvAsDuration("SUBMIT_RATE_WINDOW", 10*time.Minute),
			CleanupInterval:     getEnvAsDuration("ABUSE_CLEANUP_INTERVAL", 1*time.Hour),
			LogRetention:        getEnvAsDuration("ORDER_LOG_RETENTION", 90*24*time.Hour),
		},
		Email: EmailConfig{
			Enabled:         getEnvAsBool("EMAIL_ENABLED", false),
			AWSRegion:       getEnv("AWS_REGION", "ap-south-1"),
			FromAddress:     getEnv("EMAIL_FROM", ""),
			OperatorAddress: getEnv("EMAIL_OPERATOR", ""),
		},
		Store: StoreConfig{
			WhatsAppNumber: getEnv("WHATSAPP_NUMBER", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if cfg.Email.Enabled && (cfg.Email.FromAddress == "" || cfg.Email.OperatorAddress == "") {
		return nil, fmt.Errorf("EMAIL_FROM and EMAIL_OPERATOR are required when EMAIL_ENABLED=true")
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		return parseList(originsStr)
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
