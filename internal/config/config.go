package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string
	Environment   string
	CORSOrigins   []string

	MongoURI     string
	MongoDB      string
	StoreTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionFile   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	// RequireAuth puts the session gate in front of the item routes.
	RequireAuth bool
}

func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	return &Config{
		ServerAddress: ":" + getEnv("PORT", "3000"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		CORSOrigins:   getEnvAsList("CORS_ORIGINS", []string{"*"}),

		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "inventory"),
		StoreTimeout: getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", "your-session-secret-change-in-production"),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionFile:   getEnv("SESSION_FILE", "./data/sessions.json"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", "http://localhost:3000/github/callback"),
		RequireAuth:        getEnvAsBool("REQUIRE_AUTH", false),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OAuthEnabled reports whether GitHub credentials were supplied.
func (c *Config) OAuthEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	result, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	result, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	result, err := time.ParseDuration(os.Getenv(key))
	if err != nil || result <= 0 {
		return defaultValue
	}
	return result
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
