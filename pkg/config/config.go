package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv         = "GLOWORA_APP_ENV"
	EnvGatewayBaseURL = "GLOWORA_GATEWAY_BASE_URL"
)

type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	Watch   WatchConfig
	Metrics MetricsConfig
	Stub    StubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Watch.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GLOWORA_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"GLOWORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GLOWORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type GatewayConfig struct {
	BaseURL string        `envconfig:"GLOWORA_GATEWAY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GLOWORA_GATEWAY_TIMEOUT" default:"10s"`
}

// WatchConfig carries the confirmation session cadence. The poll interval and
// countdown tick are part of the observable behavior of the checkout flow, so
// they are named configuration rather than constants buried in the session.
type WatchConfig struct {
	PollInterval  time.Duration `envconfig:"GLOWORA_WATCH_POLL_INTERVAL" default:"5s"`
	CountdownTick time.Duration `envconfig:"GLOWORA_WATCH_COUNTDOWN_TICK" default:"1s"`
	CheckTimeout  time.Duration `envconfig:"GLOWORA_WATCH_CHECK_TIMEOUT" default:"10s"`
}

func (w WatchConfig) validate() error {
	if w.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", w.PollInterval)
	}
	if w.CountdownTick <= 0 {
		return fmt.Errorf("countdown tick must be positive, got %s", w.CountdownTick)
	}
	if w.CheckTimeout <= 0 {
		return fmt.Errorf("check timeout must be positive, got %s", w.CheckTimeout)
	}
	return nil
}

type MetricsConfig struct {
	Addr string `envconfig:"GLOWORA_METRICS_ADDR" default:""`
}

type StubConfig struct {
	Port string `envconfig:"GLOWORA_STUB_PORT" default:"8085"`
}
