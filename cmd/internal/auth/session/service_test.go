package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RayenHanafi/Mosque-Noor/cmd/security/token"
)

type fakeDirectory map[string]string

func (d fakeDirectory) Username(_ context.Context, id string) (string, bool, error) {
	u, ok := d[id]
	return u, ok, nil
}

const testAdminID = "01J9Z6S7Q8W3T0M1ZQ2N4B5C6D"

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()

	st := NewMemoryStore(fakeDirectory{testAdminID: "admin", "01J9Z6S7Q8W3T0M1ZQ2N4B5C6E": "imam"})
	svc, err := NewService(DefaultConfig(), st, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, st
}

func TestCreateSession_SingleSessionInvariant(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

	var tokens []string
	for i := 0; i < 5; i++ {
		iss, err := svc.CreateSession(ctx, now.Add(time.Duration(i)*time.Minute), testAdminID)
		if err != nil {
			t.Fatalf("CreateSession #%d: %v", i, err)
		}
		tokens = append(tokens, iss.Token)

		n, err := svc.ActiveSessions(ctx, testAdminID)
		if err != nil {
			t.Fatalf("ActiveSessions: %v", err)
		}
		if n != 1 {
			t.Fatalf("after login #%d: %d sessions, want 1", i, n)
		}
	}

	for i, tok := range tokens[:len(tokens)-1] {
		if _, err := svc.ValidateSession(ctx, now.Add(10*time.Minute), tok); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("superseded token #%d: expected ErrSessionNotFound, got %v", i, err)
		}
	}
	if _, err := svc.ValidateSession(ctx, now.Add(10*time.Minute), tokens[len(tokens)-1]); err != nil {
		t.Fatalf("latest token rejected: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("store holds %d rows, want 1", st.Len())
	}
}

func TestCreateSession_ConcurrentLoginsKeepOneRow(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateSession(ctx, now, testAdminID); err != nil {
				t.Errorf("CreateSession: %v", err)
			}
		}()
	}
	wg.Wait()

	if st.Len() != 1 {
		t.Fatalf("store holds %d rows after concurrent logins, want 1", st.Len())
	}
}

func TestCreateSession_UnknownAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"", "01J9Z6S7Q8W3T0M1ZQ2N4B5C6Z"} {
		if _, err := svc.CreateSession(context.Background(), time.Now(), id); !errors.Is(err, ErrAdminNotFound) {
			t.Fatalf("%q: expected ErrAdminNotFound, got %v", id, err)
		}
	}
}

func TestCreateSession_StoreFailureIsFatal(t *testing.T) {
	svc, st := newTestService(t)
	boom := errors.New("store down")
	st.FailAll(boom)

	iss, err := svc.CreateSession(context.Background(), time.Now(), testAdminID)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if iss.Token != "" {
		t.Fatalf("token returned despite failure")
	}
}

func TestValidateSession_ExpiryBoundary(t *testing.T) {
	var reaped []string
	svc, st := newTestService(t, WithReapObserver(func(mode string, n int) {
		reaped = append(reaped, mode)
	}))
	ctx := context.Background()
	created := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)

	iss, err := svc.CreateSession(ctx, created, testAdminID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !iss.ExpiresAt.Equal(created.Add(8 * time.Hour)) {
		t.Fatalf("expires_at = %v, want created+8h", iss.ExpiresAt)
	}

	for _, at := range []time.Duration{0, time.Second, 4 * time.Hour, 8*time.Hour - time.Nanosecond} {
		id, err := svc.ValidateSession(ctx, created.Add(at), iss.Token)
		if err != nil {
			t.Fatalf("T+%v: expected valid, got %v", at, err)
		}
		if id.AdminID != testAdminID || id.Username != "admin" {
			t.Fatalf("T+%v: unexpected identity %+v", at, id)
		}
	}

	_, err = svc.ValidateSession(ctx, created.Add(8*time.Hour), iss.Token)
	if !errors.Is(err, ErrSessionExpired) || !IsUnauthorized(err) {
		t.Fatalf("T+8h: expected expired, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expired row was not reaped")
	}
	if len(reaped) != 1 || reaped[0] != ReapLazy {
		t.Fatalf("reap observer calls = %v", reaped)
	}

	_, err = svc.ValidateSession(ctx, created.Add(8*time.Hour+time.Minute), iss.Token)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("after reap: expected not found, got %v", err)
	}
}

func TestValidateSession_RejectsMalformedWithoutStore(t *testing.T) {
	svc, st := newTestService(t)
	st.FailAll(errors.New("must not be called"))

	for _, tok := range []string{"", strings.Repeat("x", maxTokenLen+1)} {
		if _, err := svc.ValidateSession(context.Background(), time.Now(), tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestValidateSession_AdminDeletedCascades(t *testing.T) {
	dir := fakeDirectory{testAdminID: "admin"}
	st := NewMemoryStore(dir)
	svc, err := NewService(DefaultConfig(), st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()
	now := time.Now().UTC()

	iss, err := svc.CreateSession(ctx, now, testAdminID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	delete(dir, testAdminID)

	if _, err := svc.ValidateSession(ctx, now, iss.Token); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized after admin deletion, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("orphaned session kept")
	}
}

func TestInvalidateSession_Idempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	iss, err := svc.CreateSession(ctx, now, testAdminID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	removed, err := svc.InvalidateSession(ctx, iss.Token)
	if err != nil || !removed {
		t.Fatalf("first invalidate: removed=%v err=%v", removed, err)
	}
	for _, tok := range []string{iss.Token, "never-issued", ""} {
		removed, err := svc.InvalidateSession(ctx, tok)
		if err != nil || removed {
			t.Fatalf("invalidate %q: removed=%v err=%v", tok, removed, err)
		}
	}
	if st.Len() != 0 {
		t.Fatalf("session row left behind")
	}
	if _, err := svc.ValidateSession(ctx, now, iss.Token); !IsUnauthorized(err) {
		t.Fatalf("invalidated token still validates: %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	var cleaned int
	svc, st := newTestService(t, WithReapObserver(func(mode string, n int) {
		if mode == ReapCleanup {
			cleaned += n
		}
	}))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateSession(ctx, base, testAdminID); err != nil {
		t.Fatalf("CreateSession admin: %v", err)
	}
	if _, err := svc.CreateSession(ctx, base.Add(6*time.Hour), "01J9Z6S7Q8W3T0M1ZQ2N4B5C6E"); err != nil {
		t.Fatalf("CreateSession imam: %v", err)
	}

	n, err := svc.CleanupExpiredSessions(ctx, base.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 || cleaned != 1 || st.Len() != 1 {
		t.Fatalf("cleanup removed %d (observer %d), %d left", n, cleaned, st.Len())
	}

	n, err = svc.CleanupExpiredSessions(ctx, base.Add(8*time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("second cleanup: n=%d err=%v", n, err)
	}
}

func TestRevokeAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	iss, err := svc.CreateSession(ctx, now, testAdminID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	n, err := svc.RevokeAll(ctx, testAdminID)
	if err != nil || n != 1 {
		t.Fatalf("RevokeAll: n=%d err=%v", n, err)
	}
	if _, err := svc.ValidateSession(ctx, now, iss.Token); !IsUnauthorized(err) {
		t.Fatalf("revoked token still validates: %v", err)
	}
}

func TestStoreKeepsOnlyDigest(t *testing.T) {
	hasher := token.NewHasher([]byte(strings.Repeat("k", token.MinHMACKeyBytes)))
	svc, st := newTestService(t, WithHasher(hasher))

	iss, err := svc.CreateSession(context.Background(), time.Now(), testAdminID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, plain := st.byHash[iss.Token]; plain {
		t.Fatalf("plain token stored")
	}
	if _, ok := st.byHash[hasher.Digest(iss.Token)]; !ok {
		t.Fatalf("digest not stored")
	}
}

func TestTokens_UniqueAndUnbiased(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	var freq [256]int
	total := 0

	for i := 0; i < n; i++ {
		tok, err := newOpaqueToken(DefaultTokenBytes)
		if err != nil {
			t.Fatalf("newOpaqueToken: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("collision after %d tokens", i)
		}
		seen[tok] = struct{}{}

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil || len(raw) != DefaultTokenBytes {
			t.Fatalf("token does not decode to %d bytes: %v", DefaultTokenBytes, err)
		}
		for _, b := range raw {
			freq[b]++
		}
		total += len(raw)
	}

	// Chi-square over 255 degrees of freedom; a uniform source lands near 255.
	expected := float64(total) / 256
	chi := 0.0
	for _, c := range freq {
		d := float64(c) - expected
		chi += d * d / expected
	}
	if chi > 400 {
		t.Fatalf("byte distribution looks biased: chi-square=%.1f", chi)
	}
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	st := NewMemoryStore(fakeDirectory{})
	for _, cfg := range []Config{
		{TTL: 0, TokenBytes: 32},
		{TTL: time.Hour, TokenBytes: 8},
	} {
		if _, err := NewService(cfg, st); !errors.Is(err, ErrConfig) {
			t.Fatalf("%+v: expected ErrConfig, got %v", cfg, err)
		}
	}
}
