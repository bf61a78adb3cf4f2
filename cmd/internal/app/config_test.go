package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearNoorEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NOOR_ENV", "NOOR_HTTP_ADDR", "NOOR_LOG_LEVEL", "NOOR_LOG_FORMAT", "NOOR_DATABASE_URL",
		"NOOR_DB_SCHEMA", "NOOR_METRICS_ENABLED", "NOOR_HTTP_READ_TIMEOUT", EnvConfigFile,
		"NOOR_REQUIRE_TOKEN_HMAC", "NOOR_TOKEN_HMAC_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearNoorEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8080" || cfg.DBSchema != "noor" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Production() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	clearNoorEnv(t)

	path := filepath.Join(t.TempDir(), "noor.yaml")
	content := `
http_addr: "127.0.0.1:9000"
log_format: text
read_timeout: 20s
db_schema: mosque
metrics_enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigFile, path)
	t.Setenv("NOOR_HTTP_ADDR", "127.0.0.1:9100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9100" {
		t.Fatalf("env must override YAML, got %q", cfg.HTTPAddr)
	}
	if cfg.LogFormat != "text" || cfg.ReadTimeout != 20*time.Second || cfg.DBSchema != "mosque" || cfg.MetricsEnabled {
		t.Fatalf("YAML values not applied: %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad_schema", env: map[string]string{"NOOR_DB_SCHEMA": "noor; drop"}},
		{name: "bad_log_format", env: map[string]string{"NOOR_LOG_FORMAT": "xml"}},
		{name: "production_without_db", env: map[string]string{"NOOR_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearNoorEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearNoorEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
