package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	APIBaseURL  string
	WSBaseURL   string
	HTTPTimeout time.Duration

	StorageDir string

	TelegramBotToken string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "gasbot"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "https://backend-luminan.onrender.com/api/v1"))
	cfg.WSBaseURL = cast.ToString(getOrReturnDefault("WS_BASE_URL", "wss://backend-luminan.onrender.com"))
	cfg.HTTPTimeout = time.Duration(cast.ToInt(getOrReturnDefault("HTTP_TIMEOUT_SECONDS", 30))) * time.Second

	cfg.StorageDir = cast.ToString(getOrReturnDefault("STORAGE_DIR", "./data"))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
