package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	Protocol              string        `mapstructure:"trc_protocol"`
	Host                  string        `mapstructure:"trc_host"`
	AuthHeader            string        `mapstructure:"trc_auth_header"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	RequestsFile  string `mapstructure:"requests_file"`
	ReportersFile string `mapstructure:"reporters_file"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from configs/.env and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "trcctl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("trc_protocol", "https")
	v.SetDefault("trc_host", "")
	v.SetDefault("trc_auth_header", "")
	v.SetDefault("request_timeout_seconds", 0)
	v.SetDefault("requests_file", "./configs/requests.yaml")
	v.SetDefault("reporters_file", "")
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Protocol = strings.ToLower(strings.TrimSpace(cfg.Protocol))
	if cfg.Protocol != "http" && cfg.Protocol != "https" {
		return nil, fmt.Errorf("invalid trc_protocol %q (expected http or https)", cfg.Protocol)
	}
	cfg.Host = strings.TrimSpace(cfg.Host)

	if cfg.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}
