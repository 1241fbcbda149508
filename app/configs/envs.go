package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type ENV struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	Port       string

	AppEnv     string
	AppAuthKey string
	AppEncKey  string

	LogLevel    string
	LogFormat   string
	LogOutput   string
	LogFilePath string
}

// LoadEnv reads .env when present and falls back to the process environment.
// The returned value is passed down by injection; nothing in the app reads
// os.Getenv after startup.
func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("warning: no .env file found")
	}

	return ENV{
		DBHost:     getenv("DB_HOST", "127.0.0.1"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "3306"),
		Port:       getenv("APP_PORT", "8080"),

		AppEnv:     getenv("APP_ENV", "development"),
		AppAuthKey: os.Getenv("APP_AUTH_KEY"),
		AppEncKey:  os.Getenv("APP_ENC_KEY"),

		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
		LogOutput:   getenv("LOG_OUTPUT", "stdout"),
		LogFilePath: getenv("LOG_FILE_PATH", "logs/app.log"),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
