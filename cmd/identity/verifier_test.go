package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/RayenHanafi/Mosque-Noor/cmd/security/password"
)

func testPasswordConfig() password.Config {
	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

type countingStore struct {
	Store
	lookups int
}

func (c *countingStore) GetAdminAuthByUsername(ctx context.Context, username string) (AdminAuth, error) {
	c.lookups++
	return c.Store.GetAdminAuthByUsername(ctx, username)
}

func newTestVerifier(t *testing.T) (*Verifier, *MemoryStore, Admin) {
	t.Helper()

	st := NewMemoryStore()
	v, err := NewVerifier(st, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	a, err := v.CreateAdmin(context.Background(), "admin", "correct-horse")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return v, st, a
}

func TestVerifyCredentials_Success(t *testing.T) {
	v, _, a := newTestVerifier(t)

	got, err := v.VerifyCredentials(context.Background(), "  admin ", "correct-horse")
	if err != nil {
		t.Fatalf("VerifyCredentials: %v", err)
	}
	if got.ID != a.ID || got.Username != "admin" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestVerifyCredentials_EmptyInputSkipsStore(t *testing.T) {
	st := &countingStore{Store: NewMemoryStore()}
	v, err := NewVerifier(st, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	for _, tc := range []struct{ user, pass string }{
		{"", "x"},
		{"admin", ""},
		{"   ", "secret"},
	} {
		_, err := v.VerifyCredentials(context.Background(), tc.user, tc.pass)
		if !IsInvalidInput(err) {
			t.Fatalf("(%q,%q): expected invalid input, got %v", tc.user, tc.pass, err)
		}
	}
	if st.lookups != 0 {
		t.Fatalf("store was queried %d times for empty input", st.lookups)
	}
}

func TestVerifyCredentials_UniformFailure(t *testing.T) {
	v, _, _ := newTestVerifier(t)
	ctx := context.Background()

	_, errUnknown := v.VerifyCredentials(ctx, "nosuchuser", "x")
	_, errWrong := v.VerifyCredentials(ctx, "admin", "wrongpass")

	if !IsInvalidCredentials(errUnknown) || !IsInvalidCredentials(errWrong) {
		t.Fatalf("expected invalid credentials for both, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("failures must be indistinguishable: %q vs %q", errUnknown, errWrong)
	}
	if IsNotFound(errUnknown) {
		t.Fatalf("unknown user must not surface as not found")
	}
}

func TestVerifyCredentials_OversizedInput(t *testing.T) {
	v, _, _ := newTestVerifier(t)

	_, err := v.VerifyCredentials(context.Background(), strings.Repeat("a", MaxUsernameLen+1), "x")
	if !IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestVerifyCredentials_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	v, err := NewVerifier(failingStore{err: boom}, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	_, err = v.VerifyCredentials(context.Background(), "admin", "whatever")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if IsInvalidCredentials(err) {
		t.Fatalf("store failure must not look like bad credentials")
	}
}

func TestVerifyCredentials_UpgradesLegacyBcrypt(t *testing.T) {
	st := NewMemoryStore()
	v, err := NewVerifier(st, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	ctx := context.Background()
	if _, err := st.CreateAdmin(ctx, CreateAdminInput{ID: "01J0000000000000000000000A", Username: "imam", PasswordHash: string(legacy)}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	if _, err := v.VerifyCredentials(ctx, "imam", "legacy-pass"); err != nil {
		t.Fatalf("legacy login: %v", err)
	}

	a, err := st.GetAdminAuthByUsername(ctx, "imam")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.HasPrefix(a.PasswordHash, "$argon2id$") {
		t.Fatalf("hash was not upgraded: %q", a.PasswordHash[:10])
	}
	if _, err := v.VerifyCredentials(ctx, "imam", "legacy-pass"); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name     string
		adminID  func(Admin) string
		current  string
		next     string
		wantKind error
	}{
		{name: "missing_current", current: "", next: "new-password-1", wantKind: ErrInvalidInput},
		{name: "missing_new", current: "correct-horse", next: "", wantKind: ErrInvalidInput},
		{name: "new_too_short", current: "correct-horse", next: "1234567", wantKind: password.ErrPasswordTooShort},
		{name: "wrong_current", current: "not-the-password", next: "new-password-1", wantKind: ErrWrongPassword},
		{name: "admin_missing", adminID: func(Admin) string { return "01J00000000000000000000000" }, current: "correct-horse", next: "new-password-1", wantKind: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, st, a := newTestVerifier(t)
			ctx := context.Background()
			before, _ := st.GetAdminAuthByID(ctx, a.ID)

			id := a.ID
			if tt.adminID != nil {
				id = tt.adminID(a)
			}
			err := v.ChangePassword(ctx, id, tt.current, tt.next)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}

			after, _ := st.GetAdminAuthByID(ctx, a.ID)
			if after.PasswordHash != before.PasswordHash {
				t.Fatalf("hash changed on failed password change")
			}
		})
	}
}

func TestChangePassword_ShortIsInvalidInput(t *testing.T) {
	v, _, a := newTestVerifier(t)

	err := v.ChangePassword(context.Background(), a.ID, "correct-horse", "1234567")
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	var pe PolicyError
	if !errors.As(err, &pe) || pe.MinLength != 8 {
		t.Fatalf("expected PolicyError with min length 8, got %#v", err)
	}
}

func TestChangePassword_Success(t *testing.T) {
	v, _, a := newTestVerifier(t)
	ctx := context.Background()

	if err := v.ChangePassword(ctx, a.ID, "correct-horse", "battery-staple"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := v.VerifyCredentials(ctx, "admin", "correct-horse"); !IsInvalidCredentials(err) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := v.VerifyCredentials(ctx, "admin", "battery-staple"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestCreateAdmin_Validation(t *testing.T) {
	v, _, _ := newTestVerifier(t)
	ctx := context.Background()

	if _, err := v.CreateAdmin(ctx, "admin", "another-pass"); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := v.CreateAdmin(ctx, "two words", "another-pass"); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for whitespace, got %v", err)
	}
	if _, err := v.CreateAdmin(ctx, "imam", "short"); !errors.Is(err, password.ErrPasswordTooShort) {
		t.Fatalf("expected short password error, got %v", err)
	}
}

type failingStore struct {
	err error
}

func (f failingStore) GetAdminAuthByUsername(context.Context, string) (AdminAuth, error) {
	return AdminAuth{}, f.err
}

func (f failingStore) GetAdminAuthByID(context.Context, string) (AdminAuth, error) {
	return AdminAuth{}, f.err
}

func (f failingStore) CreateAdmin(context.Context, CreateAdminInput) (Admin, error) {
	return Admin{}, f.err
}

func (f failingStore) UpdatePasswordHash(context.Context, string, string, time.Time) error {
	return f.err
}
