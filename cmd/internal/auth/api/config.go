package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCookieName is the admin session cookie.
const DefaultCookieName = "admin_session"

// Config controls auth API behavior and security defaults.
type Config struct {
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	TrustProxy    bool
	MaxBodyBytes  int64
	LoginIPMax    int
	LoginIPWindow time.Duration

	Locale string
}

// DefaultConfig returns the settings used when no environment is present.
// Cookies are Secure only in production.
func DefaultConfig() Config {
	return Config{
		CookieName:     DefaultCookieName,
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
		MaxBodyBytes:   16 << 10,
		LoginIPMax:     10,
		LoginIPWindow:  15 * time.Minute,
		Locale:         LocaleArabic,
	}
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	production := strings.EqualFold(strings.TrimSpace(os.Getenv("NOOR_ENV")), "production")

	cfg := Config{
		CookieName:     envString("NOOR_AUTH_COOKIE_NAME", def.CookieName),
		CookiePath:     envString("NOOR_AUTH_COOKIE_PATH", def.CookiePath),
		CookieDomain:   envString("NOOR_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:   envBool("NOOR_AUTH_COOKIE_SECURE", production),
		CookieSameSite: parseSameSite(envString("NOOR_AUTH_COOKIE_SAMESITE", "strict")),
		TrustProxy:     envBool("NOOR_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:   envInt64("NOOR_AUTH_MAX_BODY_BYTES", def.MaxBodyBytes),
		LoginIPMax:     envInt("NOOR_AUTH_LOGIN_IP_MAX", def.LoginIPMax),
		LoginIPWindow:  envDuration("NOOR_AUTH_LOGIN_IP_WINDOW", def.LoginIPWindow),
		Locale:         envString("NOOR_LOCALE", def.Locale),
	}

	// Browsers drop SameSite=None cookies that are not Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}
	if !strings.HasPrefix(cfg.CookiePath, "/") {
		cfg.CookiePath = "/"
	}

	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteStrictMode
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
