// Package config loads client-side settings for pulplib transports from the
// environment, optionally layered over a YAML file. Transport implementations
// consume these values; the core library itself only needs them indirectly.
package config

import (
	"errors"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds settings consumed by pulplib Client implementations.
type Config struct {
	// URL is the base URL of the remote content-repository service.
	URL string `env:"PULP_URL" yaml:"url"`

	// Username and Password authenticate against the service when cert
	// authentication is not used.
	Username string `env:"PULP_USERNAME" yaml:"username"`
	Password string `env:"PULP_PASSWORD" yaml:"password"`

	// CertPath and KeyPath point at a client certificate pair.
	CertPath string `env:"PULP_CERT" yaml:"cert_path"`
	KeyPath  string `env:"PULP_KEY" yaml:"key_path"`

	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool `env:"PULP_INSECURE" yaml:"insecure_skip_verify" env-default:"false"`

	// TaskPollInterval is how often transports poll spawned tasks until they
	// reach a terminal state.
	TaskPollInterval time.Duration `env:"PULP_TASK_POLL_INTERVAL" yaml:"task_poll_interval" env-default:"5s"`

	// UploadChunkSize is the chunk size, in bytes, for streaming uploads.
	UploadChunkSize int64 `env:"PULP_CHUNK_SIZE" yaml:"upload_chunk_size" env-default:"1048576"`

	// LockValidity is the default duration recorded on repository lock
	// claims when callers do not supply one themselves.
	LockValidity time.Duration `env:"PULP_LOCK_VALIDITY" yaml:"lock_validity" env-default:"0"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads configuration from a YAML file, with environment variables
// taking precedence.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if c.TaskPollInterval <= 0 {
		return errors.New("task_poll_interval must be positive")
	}
	if c.UploadChunkSize <= 0 {
		return errors.New("upload_chunk_size must be positive")
	}
	if c.CertPath != "" && c.KeyPath == "" {
		return errors.New("key_path is required when cert_path is set")
	}
	return nil
}
