package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey  string
	DatabaseURL   string
	RedisAddr     string
	HTTPPort      string
	LogLevel      string
	JWTSecret     string
	AdminPassHash string
	PublicBaseURL string
	FormMode      string // "strict" or "relaxed"
	MaxAttempts   int
	LockHours     int
	MaxChatTurns  int
	AdvisorPhone  string
	AdvisorName   string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "oncoscreen.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminPassHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		FormMode:      getEnv("FORM_MODE", "strict"),
		MaxAttempts:   getEnvAsInt("MAX_ATTEMPTS", 2),
		LockHours:     getEnvAsInt("LOCK_HOURS", 48),
		MaxChatTurns:  getEnvAsInt("MAX_CHAT_TURNS", 7),
		AdvisorPhone:  getEnv("ADVISOR_PHONE", "62822296600"),
		AdvisorName:   getEnv("ADVISOR_NAME", "Anggi"),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.FormMode != "strict" && AppConfig.FormMode != "relaxed" {
		log.Fatalf("FORM_MODE must be 'strict' or 'relaxed', got %q", AppConfig.FormMode)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
