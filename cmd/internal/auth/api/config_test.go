package authapi

import (
	"net/http"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("NOOR_ENV", "")

	cfg := LoadConfigFromEnv()

	if cfg.CookieName != "admin_session" || cfg.CookiePath != "/" {
		t.Fatalf("unexpected cookie defaults: %+v", cfg)
	}
	if cfg.CookieSecure {
		t.Fatalf("cookies must not be Secure outside production")
	}
	if cfg.CookieSameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite=Strict, got %v", cfg.CookieSameSite)
	}
	if cfg.Locale != LocaleArabic {
		t.Fatalf("default locale = %q", cfg.Locale)
	}
}

func TestLoadConfigFromEnv_ProductionSecure(t *testing.T) {
	t.Setenv("NOOR_ENV", "production")

	if cfg := LoadConfigFromEnv(); !cfg.CookieSecure {
		t.Fatalf("production must default to Secure cookies")
	}
}

func TestLoadConfigFromEnv_CookieGuardrails(t *testing.T) {
	t.Setenv("NOOR_AUTH_COOKIE_SAMESITE", "none")
	t.Setenv("NOOR_AUTH_COOKIE_SECURE", "false")
	t.Setenv("NOOR_AUTH_COOKIE_PATH", "admin")

	cfg := LoadConfigFromEnv()

	if cfg.CookieSameSite != http.SameSiteNoneMode {
		t.Fatalf("expected SameSite=None, got %v", cfg.CookieSameSite)
	}
	if !cfg.CookieSecure {
		t.Fatalf("SameSite=None requires Secure=true")
	}
	if cfg.CookiePath != "/" {
		t.Fatalf("relative cookie path not reset: %q", cfg.CookiePath)
	}
}

func TestLoadConfigFromEnv_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("NOOR_AUTH_LOGIN_IP_MAX", "-3")
	t.Setenv("NOOR_AUTH_LOGIN_IP_WINDOW", "soon")
	t.Setenv("NOOR_AUTH_MAX_BODY_BYTES", "0")

	cfg := LoadConfigFromEnv()
	def := DefaultConfig()

	if cfg.LoginIPMax != def.LoginIPMax || cfg.LoginIPWindow != def.LoginIPWindow || cfg.MaxBodyBytes != def.MaxBodyBytes {
		t.Fatalf("invalid values should fall back to defaults: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("NOOR_AUTH_LOGIN_IP_MAX", "3")
	t.Setenv("NOOR_AUTH_LOGIN_IP_WINDOW", "2m")
	t.Setenv("NOOR_AUTH_TRUST_PROXY", "true")
	t.Setenv("NOOR_LOCALE", "en")

	cfg := LoadConfigFromEnv()

	if cfg.LoginIPMax != 3 || cfg.LoginIPWindow != 2*time.Minute || !cfg.TrustProxy || cfg.Locale != "en" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		in   string
		want http.SameSite
	}{
		{in: "strict", want: http.SameSiteStrictMode},
		{in: "Lax", want: http.SameSiteLaxMode},
		{in: "none", want: http.SameSiteNoneMode},
		{in: "default", want: http.SameSiteDefaultMode},
		{in: "unknown", want: http.SameSiteStrictMode},
	}

	for _, tc := range tests {
		got := parseSameSite(tc.in)
		if got != tc.want {
			t.Fatalf("parseSameSite(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMessagesFor(t *testing.T) {
	if MessagesFor("EN").LoginSuccess != english.LoginSuccess {
		t.Fatalf("locale match should be case-insensitive")
	}
	if MessagesFor("fr").LoginSuccess != arabic.LoginSuccess {
		t.Fatalf("unknown locale should fall back to Arabic")
	}
	if got := arabic.passwordTooShort(8); got != "يجب أن تكون كلمة المرور الجديدة 8 أحرف على الأقل" {
		t.Fatalf("passwordTooShort = %q", got)
	}
}
