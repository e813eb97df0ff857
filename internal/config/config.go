package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// app config; provider-specific settings live with each provider
type Config struct {
	Port           string
	Provider       string
	AllowedOrigins []string
	JWTSecret      string
	QuestionCount  int
	// GradeVariant names the variant of the grade prompt template
	GradeVariant string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	SQLitePath    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Export ExportConfig
}

type ExportConfig struct {
	Enabled   bool
	Schedule  string
	Dir       string
	MinRating float64
}

// LoadConfig reads the environment, after merging an optional .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(getEnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	config := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		QuestionCount:  getEnvInt("QUESTION_COUNT", 5),
		GradeVariant:   getEnvOrDefault("GRADE_PROMPT_VARIANT", "default"),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", StoreMongo),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "mock_interview"),
		PostgresDSN:   postgresDSN(),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "./data/mock_interview.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		Export: ExportConfig{
			Enabled:   getEnvBool("ANSWER_EXPORT_ENABLED", false),
			Schedule:  getEnvOrDefault("ANSWER_EXPORT_SCHEDULE", "0 2 * * *"),
			Dir:       getEnvOrDefault("ANSWER_EXPORT_DIR", "./exports"),
			MinRating: getEnvFloat("ANSWER_EXPORT_MIN_RATING", 8),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	// providers register themselves on import
	known := llm.Registered()
	if !slices.Contains(known, config.Provider) {
		return fmt.Errorf("unsupported AI provider: %s. Currently supported: %s", config.Provider, strings.Join(known, ", "))
	}

	switch config.StoreDriver {
	case StoreMongo:
		if config.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case StorePostgres, StoreSQLite:
	default:
		return errors.New("unsupported store driver: " + config.StoreDriver)
	}

	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if config.QuestionCount < 1 {
		return fmt.Errorf("QUESTION_COUNT must be positive, got %d", config.QuestionCount)
	}
	// API keys are checked by each provider's NewConfig()
	return nil
}

// LiveEnabled reports whether a Redis bus is configured for push updates.
func (c *Config) LiveEnabled() bool {
	return c.RedisAddr != ""
}

func postgresDSN() string {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnvOrDefault("POSTGRES_HOST", "localhost"),
		getEnvOrDefault("POSTGRES_USER", "postgres"),
		getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
		getEnvOrDefault("POSTGRES_DB", "postgres"),
		getEnvOrDefault("POSTGRES_PORT", "5432"),
		getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
