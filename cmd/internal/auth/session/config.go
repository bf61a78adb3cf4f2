package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the absolute session lifetime; the cookie Max-Age mirrors it.
	DefaultTTL = 8 * time.Hour

	// DefaultTokenBytes gives 256 bits of entropy per token.
	DefaultTokenBytes = 32

	minTokenBytes = 16 // 128 bits
	maxTokenBytes = 64
)

// Config defines runtime configuration for the session subsystem.
type Config struct {
	// TTL is measured from creation; sessions are not extended on use.
	TTL time.Duration

	// TokenBytes is the number of random bytes per token.
	TokenBytes int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TTL:        DefaultTTL,
		TokenBytes: DefaultTokenBytes,
	}
}

// Validate returns ErrConfig when a field is out of range.
func (c Config) Validate() error {
	if c.TTL <= 0 || c.TTL > 7*24*time.Hour {
		return ErrConfig
	}
	if c.TokenBytes < minTokenBytes || c.TokenBytes > maxTokenBytes {
		return ErrConfig
	}
	return nil
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - NOOR_SESSION_TTL (Go duration, default 8h)
//   - NOOR_SESSION_TOKEN_BYTES (16..64, default 32)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("NOOR_SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := strings.TrimSpace(os.Getenv("NOOR_SESSION_TOKEN_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
