package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort         int    `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN      string `env:"POSTGRES_DSN"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`

	WebhookURL     string        `env:"INVOICE_WEBHOOK_URL"`
	WebhookTimeout time.Duration `env:"INVOICE_WEBHOOK_TIMEOUT" envDefault:"60s"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`

	Drive Drive
	Kafka Kafka
}

type Drive struct {
	BaseURL       string        `env:"DRIVE_API_URL" envDefault:"https://www.googleapis.com/drive/v3"`
	APIKey        string        `env:"GOOGLE_API_KEY"`
	Timeout       time.Duration `env:"DRIVE_TIMEOUT" envDefault:"5s"`
	RetryAttempts int           `env:"DRIVE_RETRY_ATTEMPTS" envDefault:"2"`
}

type Kafka struct {
	Brokers          []string `env:"KAFKA_BROKERS"`
	SubmissionsTopic string   `env:"KAFKA_SUBMISSIONS_TOPIC" envDefault:"invoicing.submissions"`
}

func New(envPath string) (Config, error) {
	var c Config

	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = env.Parse(&c)
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
