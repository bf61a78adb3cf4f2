package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
	// RejectVeryWeak enables a minimal trivial-pattern check.
	RejectVeryWeak bool
}

// Legacy controls verification of hashes written by the previous deployment.
type Legacy struct {
	// AcceptBcrypt lets Verify check $2a$/$2b$/$2y$ hashes. New hashes are always Argon2id.
	AcceptBcrypt bool
	// MaxBcryptCost bounds the work an untrusted bcrypt hash can demand.
	MaxBcryptCost int
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
	Legacy Legacy
}

// DefaultConfig returns the baseline used for admin passwords.
// MinLength matches the change-password rule of 8 characters.
func DefaultConfig() Config {
	// Parallelism follows the host CPU count, clamped to [1..4] for containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      8,
			MaxLength:      256,
			RejectVeryWeak: false,
		},
		Legacy: Legacy{
			AcceptBcrypt:  true,
			MaxBcryptCost: 14,
		},
	}
}

type u32Setting struct {
	env      string
	min, max uint32
	dst      *uint32
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - NOOR_PASSWORD_MIN_LEN, NOOR_PASSWORD_MAX_LEN
// - NOOR_PASSWORD_REJECT_VERY_WEAK (true/false)
// - NOOR_PASSWORD_ACCEPT_BCRYPT (true/false)
// - NOOR_ARGON2_MEMORY_KIB, NOOR_ARGON2_ITERATIONS, NOOR_ARGON2_PARALLELISM
// - NOOR_ARGON2_SALT_LEN, NOOR_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("NOOR_PASSWORD_MIN_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("NOOR_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}
	if v, ok := os.LookupEnv("NOOR_PASSWORD_MAX_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("NOOR_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	bools := map[string]*bool{
		"NOOR_PASSWORD_REJECT_VERY_WEAK": &cfg.Policy.RejectVeryWeak,
		"NOOR_PASSWORD_ACCEPT_BCRYPT":    &cfg.Legacy.AcceptBcrypt,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}

	parallelism := uint32(cfg.Params.Parallelism)
	settings := []u32Setting{
		{env: "NOOR_ARGON2_MEMORY_KIB", min: 8 * 1024, max: 1024 * 1024, dst: &cfg.Params.MemoryKiB},
		{env: "NOOR_ARGON2_ITERATIONS", min: 1, max: 20, dst: &cfg.Params.Iterations},
		{env: "NOOR_ARGON2_PARALLELISM", min: 1, max: 64, dst: &parallelism},
		{env: "NOOR_ARGON2_SALT_LEN", min: 8, max: 64, dst: &cfg.Params.SaltLength},
		{env: "NOOR_ARGON2_KEY_LEN", min: 16, max: 64, dst: &cfg.Params.KeyLength},
	}
	for _, s := range settings {
		v, ok := os.LookupEnv(s.env)
		if !ok {
			continue
		}
		u, err := atou32(v, s.min, s.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", s.env, err)
		}
		*s.dst = u
	}
	p, err := u32ToU8(parallelism)
	if err != nil {
		return Config{}, fmt.Errorf("NOOR_ARGON2_PARALLELISM: %w", err)
	}
	cfg.Params.Parallelism = p

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func atoiPositiveInt(s string, minVal, maxVal int) (int, error) {
	i64, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

func u32ToU8(u uint32) (uint8, error) {
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("out of range [0..%d]", math.MaxUint8)
	}
	return uint8(u), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean")
	}
}
