package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/miku-nicol/klassyz-hair-client/pkg/config"
)

// Config holds all configuration for the storefront client.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"https://klassyz-backend.onrender.com/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"2"`

	// Local state directory; defaults to ~/.klassyz when unset.
	StateDir string `env:"STATE_DIR" envDefault:""`

	// Checkout
	PaymentMethod string `env:"PAYMENT_METHOD" envDefault:"Paystack"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".klassyz")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %s", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", c.MaxRetries)
	}
	if c.PaymentMethod == "" {
		return fmt.Errorf("payment method is required")
	}
	return nil
}
