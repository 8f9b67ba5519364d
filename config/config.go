package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	DatabaseURL        string
	RabbitMQURL        string
	RedisSentinelHosts string
	RedisMasterName    string
	RedisUrl           string
	LogLevel           string
	SelectionConfig    SelectionConfig
	ServiceName        string
}

type SelectionConfig struct {
	Method        string
	Temperature   float64
	UseGenerator  bool
	OverridesPath string
}

func LoadConfig() *AppConfig {
	// use a temporary logger for now
	logger := zap.NewExample().Named("config")

	godotenv.Load()

	config := &AppConfig{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		RedisSentinelHosts: os.Getenv("REDIS_SENTINEL_HOSTS"),
		RedisMasterName:    os.Getenv("REDIS_MASTER"),
		RedisUrl:           os.Getenv("OVERRIDE_REDIS_URL"), // optional, for local dev
		LogLevel:           os.Getenv("LOG_LEVEL"),
		SelectionConfig: SelectionConfig{
			Method:        os.Getenv("SELECTION_METHOD"),
			Temperature:   parseFloat(os.Getenv("SELECTION_TEMPERATURE"), 0),
			UseGenerator:  parseBool(os.Getenv("USE_GENERATOR"), true),
			OverridesPath: os.Getenv("STRATEGY_OVERRIDES_PATH"),
		},
		ServiceName: os.Getenv("SERVICE_NAME"),
	}

	if config.LogLevel == "" {
		config.LogLevel = "info" // Set default log level
	}

	if config.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}
	if config.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL environment variable is required")
	}
	if config.RedisUrl == "" {
		if config.RedisSentinelHosts == "" {
			logger.Fatal("REDIS_SENTINEL_HOSTS environment variable is required")
		}
		if config.RedisMasterName == "" {
			logger.Fatal("REDIS_MASTER environment variable is required")
		}
	}
	if config.ServiceName == "" {
		config.ServiceName = "b3strat" // Default service name
	}

	return config
}

func parseFloat(val string, defaultVal float64) float64 {
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func parseBool(val string, defaultVal bool) bool {
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
