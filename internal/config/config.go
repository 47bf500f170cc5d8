package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type RecognizerConfig struct {
	URL     string
	Token   string
	Region  string
	Timeout time.Duration
}

type PushConfig struct {
	URL   string
	Key   string
	Topic string
}

type StorageConfig struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type EventsConfig struct {
	NATSUrl string
	Subject string
	Queue   string
}

type RedisConfig struct {
	Addr     string
	DedupTTL time.Duration
}

type IngestConfig struct {
	InternalToken string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Recognizer  RecognizerConfig
	Push        PushConfig
	Storage     StorageConfig
	Events      EventsConfig
	Redis       RedisConfig
	Ingest      IngestConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Recognizer: RecognizerConfig{
			URL:     v.GetString("RECOGNIZER_URL"),
			Token:   v.GetString("RECOGNIZER_TOKEN"),
			Region:  v.GetString("RECOGNIZER_REGION"),
			Timeout: v.GetDuration("RECOGNIZER_TIMEOUT"),
		},
		Push: PushConfig{
			URL:   v.GetString("PUSH_SERVICE_URL"),
			Key:   v.GetString("PUSH_SERVICE_KEY"),
			Topic: v.GetString("PUSH_TOPIC"),
		},
		Storage: StorageConfig{
			Region:        v.GetString("STORAGE_REGION"),
			Endpoint:      v.GetString("STORAGE_ENDPOINT"),
			AccessKey:     v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     v.GetString("STORAGE_SECRET_KEY"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Events: EventsConfig{
			NATSUrl: v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_REPORTS_SUBJECT"),
			Queue:   v.GetString("NATS_REPORTS_QUEUE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			DedupTTL: v.GetDuration("REDIS_DEDUP_TTL"),
		},
		Ingest: IngestConfig{
			InternalToken: v.GetString("INGEST_INTERNAL_TOKEN"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Recognizer.Region == "" {
		cfg.Recognizer.Region = "gb"
	}
	if cfg.Recognizer.Timeout == 0 {
		cfg.Recognizer.Timeout = 30 * time.Second
	}
	if cfg.Push.Topic == "" {
		cfg.Push.Topic = "charger_alerts"
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "reports.created"
	}
	if cfg.Events.Queue == "" {
		cfg.Events.Queue = "charger-alert-service"
	}
	if cfg.Redis.DedupTTL == 0 {
		cfg.Redis.DedupTTL = 24 * time.Hour
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RECOGNIZER_TOKEN is deliberately not required: without it the pipeline
// skips runs silently instead of failing startup.
func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Recognizer.URL == "" {
		return fmt.Errorf("RECOGNIZER_URL is required")
	}
	if cfg.Push.URL == "" {
		return fmt.Errorf("PUSH_SERVICE_URL is required")
	}
	return nil
}
