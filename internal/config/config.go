package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	ServerPort string
	Env        string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// JWTSecret signs both bearer identity tokens and blob store slot and
	// download tokens.
	JWTSecret string

	BaseURL           string
	BlobDir           string
	UploadSlotTTLMin  int
	DownloadURLTTLMin int
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Env:        getEnv("APP_ENV", "dev"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "parley"),
		DBPassword: getEnv("DB_PASSWORD", "parley_dev_password"),
		DBName:     getEnv("DB_NAME", "parley"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		BlobDir:           getEnv("BLOB_DIR", "./data/blobs"),
		UploadSlotTTLMin:  getEnvInt("UPLOAD_SLOT_TTL_MINUTES", 15),
		DownloadURLTTLMin: getEnvInt("DOWNLOAD_URL_TTL_MINUTES", 60),
	}
}

// Validate rejects configurations that would be unsafe to start with.
func Validate(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	if cfg.DBHost == "" || cfg.DBName == "" {
		return errors.New("database host and name are required")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("default JWT secret is not allowed outside dev")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
