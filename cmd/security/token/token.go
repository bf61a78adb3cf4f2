package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
)

const (
	// HMACEnvKey names the env var holding the session digest secret.
	// #nosec G101 -- env var name, not a credential.
	HMACEnvKey = "NOOR_TOKEN_HMAC_KEY"

	// MinHMACKeyBytes is the shortest key accepted when HMAC is required.
	MinHMACKeyBytes = 32

	// DigestHexLen is the length of every digest produced by this package.
	DigestHexLen = sha256.Size * 2
)

// Key errors returned by HMACKeyFromEnv and HasherFromEnv.
var (
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")
)

// Hasher computes session-token digests with an optional HMAC key.
// The zero value hashes with plain SHA-256.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher keyed with key. An empty key selects SHA-256.
func NewHasher(key []byte) Hasher {
	if len(key) == 0 {
		return Hasher{}
	}
	k := make([]byte, len(key))
	copy(k, key)
	return Hasher{key: k}
}

// HasherFromEnv builds a Hasher from NOOR_TOKEN_HMAC_KEY.
// When require is true the key must be present and at least MinHMACKeyBytes long.
func HasherFromEnv(require bool) (Hasher, error) {
	if !require {
		raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
		return NewHasher([]byte(raw)), nil
	}
	key, err := HMACKeyFromEnv(MinHMACKeyBytes)
	if err != nil {
		return Hasher{}, err
	}
	return NewHasher(key), nil
}

// Keyed reports whether the hasher runs in HMAC mode.
func (h Hasher) Keyed() bool { return len(h.key) > 0 }

// Digest returns the hex digest used to store and look up a session token.
func (h Hasher) Digest(token string) string {
	if len(h.key) == 0 {
		return HashSHA256Hex(token)
	}
	return HashHMACSHA256Hex(token, h.key)
}

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of s using key.
func HashHMACSHA256Hex(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}

// HMACKeyFromEnv returns the trimmed key bytes from NOOR_TOKEN_HMAC_KEY.
// Missing or blank -> ErrHMACKeyMissing. Shorter than minBytes -> ErrHMACKeyTooShort.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}
