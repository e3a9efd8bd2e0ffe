package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	SQLitePath    string
	RedisAddr     string
	RedisPort     string
	RedisPassword string
	JWTSecret     string

	HTTPAddr    string
	AppBaseURL  string
	CORSOrigins []string

	// Payment configuration
	PaymentTimezone  string
	GatewayTimeout   time.Duration
	LedgerHashSecret string
	ReplayMarkerTTL  time.Duration

	// Seed values for the coinpay provider row, used only when the row is missing
	CoinPayAppID      string
	CoinPaySecret     string
	CoinPayGatewayURL string
	CoinPayReturnPath string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// Location resolves PaymentTimezone. Unknown zones fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.PaymentTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		SQLitePath:    getEnv("SQLITE_PATH", "coinpay.db"),
		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		AppBaseURL:  strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),

		PaymentTimezone:  getEnv("PAYMENT_TIMEZONE", "Asia/Hong_Kong"),
		GatewayTimeout:   time.Duration(getEnvAsPositiveInt("GATEWAY_TIMEOUT_SECONDS", 10)) * time.Second,
		LedgerHashSecret: getEnv("LEDGER_HASH_SECRET", os.Getenv("JWT_SECRET")),
		ReplayMarkerTTL:  time.Duration(getEnvAsInt("REPLAY_MARKER_TTL_HOURS", 72)) * time.Hour,

		CoinPayAppID:      os.Getenv("COINPAY_APP_ID"),
		CoinPaySecret:     os.Getenv("COINPAY_SECRET"),
		CoinPayGatewayURL: getEnv("COINPAY_GATEWAY_URL", "https://openapi.coinpay.la/"),
		CoinPayReturnPath: getEnv("COINPAY_RETURN_PATH", "/user/code"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsPositiveInt falls back to defaultValue for zero or negative values.
func getEnvAsPositiveInt(key string, defaultValue int) int {
	if value := getEnvAsInt(key, defaultValue); value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
