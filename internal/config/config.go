package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	Profiles ProfileConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type MongoConfig struct {
	ConnectTimeout time.Duration
	CacheTTL       time.Duration
	SampleSize     int
}

type ProfileConfig struct {
	StorePath string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Mongo: MongoConfig{
			ConnectTimeout: getEnvAsSeconds("MONGO_CONNECT_TIMEOUT_SECONDS", 10),
			CacheTTL:       getEnvAsSeconds("MONGO_CACHE_TTL_SECONDS", 60),
			SampleSize:     getEnvAsInt("MONGO_SCHEMA_SAMPLE_SIZE", 20),
		},
		Profiles: ProfileConfig{
			StorePath: getEnv("PROFILE_STORE_PATH", "profiles.json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
