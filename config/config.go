package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	Port               string        `envconfig:"ORDER_SERVICE_PORT" default:":8082"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	QueryTimeout       time.Duration `envconfig:"DB_QUERY_TIMEOUT" default:"3s"`
	FallbackOrdersFile string        `envconfig:"FALLBACK_ORDERS_FILE" default:"orders.json"`
	FallbackEventsFile string        `envconfig:"FALLBACK_EVENTS_FILE" default:"events.json"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("Warning: .env file not found, using environment variables or defaults.")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}
