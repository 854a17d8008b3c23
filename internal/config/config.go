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
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL         string
	CategoryCacheTTL time.Duration

	// Auth
	JWTSecret    string
	CookieSecure bool
	AdminEmails  []string

	// Language model
	LLMProvider       string
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LLMTimeout        time.Duration
	LLMConcurrentReqs int

	// Catalog seed
	SeedSourceURL string

	// Frontend
	FrontendURL string
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI))

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		MigrationsDir:     getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:          mustGetEnv("REDIS_URL"),
		CategoryCacheTTL:  time.Duration(getEnvAsIntOrDefault("CATEGORY_CACHE_TTL_SECONDS", 0)) * time.Second,
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		CookieSecure:      getEnvAsBoolOrDefault("COOKIE_SECURE", false),
		AdminEmails:       getEnvAsListOrDefault("ADMIN_EMAILS", nil),
		LLMProvider:       provider,
		LLMAPIKey:         mustGetEnv("LLM_API_KEY"),
		LLMBaseURL:        getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:          getEnvOrDefault("LLM_MODEL", defaultModel(provider)),
		LLMTimeout:        time.Duration(getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		LLMConcurrentReqs: getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),
		SeedSourceURL:     getEnvOrDefault("SEED_SOURCE_URL", "https://dummyjson.com/products?limit=30"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

// IsAdminEmail reports whether accounts registered with email get the admin role.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.0-flash"
	}
	return "llama-3.1-8b-instant"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
