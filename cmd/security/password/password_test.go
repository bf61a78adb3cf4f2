package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// fastConfig keeps Argon2id cheap so the suite stays quick.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func TestHashAndVerify_OK(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("jummah-at-1:30")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := cfg.Verify(h, "jummah-at-1:30")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
	if cfg.NeedsRehash(h) {
		t.Fatalf("fresh hash should not need rehash")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("jummah-at-1:30")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := cfg.Verify(h, "wrong password")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestValidate_MinMax(t *testing.T) {
	cfg := fastConfig()
	cfg.Policy.MaxLength = 16

	if err := cfg.Validate("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := cfg.Validate("1234567"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("7 characters must be rejected, got %v", err)
	}
	if err := cfg.Validate("12345678"); err != nil {
		t.Fatalf("8 characters must be accepted, got %v", err)
	}
	if err := cfg.Validate("كلمةمرور"); err != nil {
		t.Fatalf("8 Arabic runes must be accepted, got %v", err)
	}
	if err := cfg.Validate("this password is definitely too long"); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	cfg := fastConfig()

	for _, h := range []string{"not-a-hash", "$argon2id$v=18$m=1,t=1,p=1$AA$AA", "$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA"} {
		ok, err := cfg.Verify(h, "whatever")
		if !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("%q: expected ErrInvalidHash, got %v", h, err)
		}
		if ok {
			t.Fatalf("%q: expected false", h)
		}
	}
}

func TestVerify_RejectsOversizedParams(t *testing.T) {
	small := fastConfig()
	big := fastConfig()
	big.Params.MemoryKiB = small.Params.MemoryKiB * 4

	h, err := big.Hash("jummah-at-1:30")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if _, err := small.Verify(h, "jummah-at-1:30"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	cfg := fastConfig()

	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	ok, err := cfg.Verify(string(legacy), "admin123")
	if err != nil || !ok {
		t.Fatalf("expected legacy match, ok=%v err=%v", ok, err)
	}
	ok, err = cfg.Verify(string(legacy), "admin124")
	if err != nil || ok {
		t.Fatalf("expected legacy mismatch, ok=%v err=%v", ok, err)
	}
	if !cfg.NeedsRehash(string(legacy)) {
		t.Fatalf("bcrypt hashes should be flagged for rehash")
	}

	cfg.Legacy.AcceptBcrypt = false
	if _, err := cfg.Verify(string(legacy), "admin123"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash with bcrypt disabled, got %v", err)
	}
}

func TestDummyHash_NeverMatchesEmpty(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.DummyHash()
	if err != nil {
		t.Fatalf("DummyHash error: %v", err)
	}
	ok, err := cfg.Verify(h, "")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("dummy hash must not match")
	}
}

func TestPolicy_RejectVeryWeak(t *testing.T) {
	cfg := fastConfig()
	cfg.Policy.RejectVeryWeak = true

	for _, pw := range []string{"password", "11111111", "Mosque123", "aaaaaaaaaa"} {
		if err := cfg.Validate(pw); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%q: expected ErrWeakPassword, got %v", pw, err)
		}
	}
	if err := cfg.Validate("a-very-ok-pass"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}
