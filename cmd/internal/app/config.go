package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
)

// EnvConfigFile names the optional YAML config file.
const EnvConfigFile = "NOOR_CONFIG_FILE"

// Config contains the runtime configuration. Values come from defaults, then
// the optional YAML file, then NOOR_* environment variables.
type Config struct {
	Env string `yaml:"env"`

	HTTPAddr  string `yaml:"http_addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes"`

	// DatabaseURL is only read from the environment.
	DatabaseURL string `yaml:"-"`
	DBSchema    string `yaml:"db_schema"`
	DBMaxConns  int32  `yaml:"db_max_conns"`
	DBMinConns  int32  `yaml:"db_min_conns"`

	// If true, /readyz returns 503 unless a database is configured and reachable.
	ReadinessRequireDB bool `yaml:"readiness_require_db"`

	// If true, NOOR_TOKEN_HMAC_KEY must be set (>= 32 bytes) and session
	// tokens are stored as HMAC digests.
	RequireTokenHMAC bool `yaml:"require_token_hmac"`

	MetricsEnabled bool `yaml:"metrics_enabled"`

	// Seed admin for in-memory mode. The password is only read from the environment.
	DevAdminUsername string `yaml:"dev_admin_username"`
	DevAdminPassword string `yaml:"-"`
}

// Production reports whether the server runs with production defaults.
func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

func defaultConfig() Config {
	return Config{
		Env:               "development",
		HTTPAddr:          "0.0.0.0:8080",
		LogLevel:          "info",
		LogFormat:         "json",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		DBSchema:          dbschema.DefaultSchema,
		DBMaxConns:        10,
		DBMinConns:        0,
		MetricsEnabled:    true,
		DevAdminUsername:  "admin",
	}
}

// LoadConfig builds Config from defaults, the YAML file named by
// NOOR_CONFIG_FILE (if any) and environment overrides.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := EnvString(EnvConfigFile, ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Env = EnvString("NOOR_ENV", cfg.Env)

	cfg.HTTPAddr = EnvString("NOOR_HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = EnvString("NOOR_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvString("NOOR_LOG_FORMAT", cfg.LogFormat)

	cfg.ReadHeaderTimeout = EnvDuration("NOOR_HTTP_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)
	cfg.ReadTimeout = EnvDuration("NOOR_HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = EnvDuration("NOOR_HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = EnvDuration("NOOR_HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.MaxHeaderBytes = EnvInt("NOOR_HTTP_MAX_HEADER_BYTES", cfg.MaxHeaderBytes)

	cfg.DatabaseURL = EnvString("NOOR_DATABASE_URL", cfg.DatabaseURL)
	cfg.DBSchema = EnvString("NOOR_DB_SCHEMA", cfg.DBSchema)
	cfg.DBMaxConns = EnvInt32("NOOR_DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBMinConns = EnvInt32("NOOR_DB_MIN_CONNS", cfg.DBMinConns)

	cfg.ReadinessRequireDB = EnvBool("NOOR_READINESS_REQUIRE_DB", cfg.ReadinessRequireDB)
	cfg.RequireTokenHMAC = EnvBool("NOOR_REQUIRE_TOKEN_HMAC", cfg.RequireTokenHMAC)
	cfg.MetricsEnabled = EnvBool("NOOR_METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.DevAdminUsername = EnvString("NOOR_DEV_ADMIN_USERNAME", cfg.DevAdminUsername)
	cfg.DevAdminPassword = EnvString("NOOR_DEV_ADMIN_PASSWORD", cfg.DevAdminPassword)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("config: http_addr is required")
	}
	if !dbschema.ValidIdentifier(c.DBSchema) {
		return fmt.Errorf("config: invalid db_schema %q", c.DBSchema)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("config: log_format must be json or text")
	}
	if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("config: db_min_conns exceeds db_max_conns")
	}
	if c.Production() && c.DatabaseURL == "" {
		return fmt.Errorf("config: NOOR_DATABASE_URL is required in production")
	}
	return nil
}
