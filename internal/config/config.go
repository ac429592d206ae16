package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config — конфигурация сервиса из переменных окружения.
type Config struct {
	// HTTPPort — порт для /healthz и /metrics.
	HTTPPort int `env:"ENSEMBLE_HTTP_PORT" envDefault:"8084"`

	// DefaultTaskTimeout — таймаут задач без явного timeout.
	DefaultTaskTimeout time.Duration `env:"ENSEMBLE_TASK_TIMEOUT" envDefault:"5m"`

	// AgentCallTimeout — верхняя граница одного вызова агента.
	// Ноль отключает индивидуальный таймаут.
	AgentCallTimeout time.Duration `env:"ENSEMBLE_AGENT_TIMEOUT" envDefault:"60s"`

	// CleanupMaxAge — возраст завершённых задач, после которого
	// они удаляются из реестра.
	CleanupMaxAge time.Duration `env:"ENSEMBLE_CLEANUP_MAX_AGE" envDefault:"1h"`

	// CleanupInterval — период фоновой уборки завершённых задач.
	CleanupInterval time.Duration `env:"ENSEMBLE_CLEANUP_INTERVAL" envDefault:"10m"`
}

// Load читает конфигурацию из окружения и валидирует её.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTPPort)
	}
	if c.DefaultTaskTimeout <= 0 {
		return fmt.Errorf("task timeout must be positive, got %s", c.DefaultTaskTimeout)
	}
	if c.AgentCallTimeout < 0 {
		return fmt.Errorf("agent timeout must not be negative, got %s", c.AgentCallTimeout)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", c.CleanupInterval)
	}
	return nil
}
