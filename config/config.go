package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT     string
	DB_PATH  string
	BASE_URL string

	JWT_SECRET  string
	CORS_ORIGIN string

	STEAM_API_KEY string
	STEAM_LOG_DIR string

	LOG_LEVEL string
)

// LoadEnv reads a .env file if present and resolves all settings.
// Missing required settings are fatal with a distinct exit status so
// that cron wrappers can tell config failures apart from job failures.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_PATH = mustEnv("DB_PATH")
	BASE_URL = mustEnv("BASE_URL")

	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "")

	STEAM_API_KEY = mustEnv("STEAM_API_KEY")
	STEAM_LOG_DIR = getEnv("STEAM_LOG_DIR", "")

	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Printf("Missing required environment variable: %s", key)
		os.Exit(StatusRequiredConfigMissing)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
