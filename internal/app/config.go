package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console and the worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"omitempty,oneof=debug info warn error"`

	// GatewayBaseURL is the single base URL every backend endpoint hangs off.
	GatewayBaseURL   string        `envconfig:"GATEWAY_BASE_URL" validate:"required,url"`
	GatewayTimeout   time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"0"`
	GatewayRateLimit float64       `envconfig:"GATEWAY_RATE_LIMIT" default:"0" validate:"gte=0"`
	GatewayBurst     int           `envconfig:"GATEWAY_BURST" default:"10" validate:"gte=0"`

	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	CSRFSecret string        `envconfig:"CSRF_SECRET" required:"true"`

	AdminEmail        string `envconfig:"ADMIN_EMAIL" validate:"required,email"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" validate:"required"`

	LookupCacheTTL   time.Duration `envconfig:"LOOKUP_CACHE_TTL" default:"5m"`
	WorkspaceIdleTTL time.Duration `envconfig:"WORKSPACE_IDLE_TTL" default:"30m"`
	WarmupCron       string        `envconfig:"WARMUP_CRON" default:"@every 5m"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
