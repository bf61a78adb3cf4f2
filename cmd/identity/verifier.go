package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/RayenHanafi/Mosque-Noor/cmd/identity/ids"
	"github.com/RayenHanafi/Mosque-Noor/cmd/security/password"
)

// PolicyError reports a new password rejected by the password policy.
// It matches both ErrInvalidInput and the underlying password.Err* reason.
type PolicyError struct {
	Op        string
	Reason    error
	MinLength int
}

func (e PolicyError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrInvalidInput, e.Reason)
}

func (e PolicyError) Unwrap() []error { return []error{ErrInvalidInput, e.Reason} }

// Verifier checks admin credentials and changes passwords.
type Verifier struct {
	store Store
	pw    password.Config
	dummy string
	log   *slog.Logger
	now   func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLogger sets the logger used for hash maintenance events.
func WithLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if l != nil {
			v.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier builds a Verifier. It precomputes a dummy hash with the same
// parameters as real hashes so unknown usernames cost one verification.
func NewVerifier(store Store, pw password.Config, opts ...VerifierOption) (*Verifier, error) {
	if store == nil {
		return nil, errors.New("identity: nil store")
	}
	dummy, err := pw.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("identity: dummy hash: %w", err)
	}

	v := &Verifier{
		store: store,
		pw:    pw,
		dummy: dummy,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

// PasswordMinLength returns the configured minimum for new passwords.
func (v *Verifier) PasswordMinLength() int { return v.pw.Policy.MinLength }

// VerifyCredentials returns the admin identity for a matching username and
// password. Empty input fails with ErrInvalidInput before the store is touched.
// Unknown usernames and wrong passwords both fail with ErrInvalidCredentials.
func (v *Verifier) VerifyCredentials(ctx context.Context, username, plain string) (Admin, error) {
	const op = "identity.VerifyCredentials"

	username = NormalizeUsername(username)
	if username == "" || plain == "" {
		return Admin{}, invalid(op, "username and password are required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen || utf8.RuneCountInString(plain) > v.pw.Policy.MaxLength {
		_, _ = v.pw.Verify(v.dummy, plain[:min(len(plain), 64)])
		return Admin{}, invalidCredentials()
	}

	a, err := v.store.GetAdminAuthByUsername(ctx, username)
	if IsNotFound(err) {
		_, _ = v.pw.Verify(v.dummy, plain)
		return Admin{}, invalidCredentials()
	}
	if err != nil {
		return Admin{}, err
	}

	ok, err := v.pw.Verify(a.PasswordHash, plain)
	if errors.Is(err, password.ErrInvalidHash) {
		v.log.Error("identity.hash.invalid", "admin_id", a.ID)
		return Admin{}, invalidCredentials()
	}
	if err != nil {
		return Admin{}, err
	}
	if !ok {
		return Admin{}, invalidCredentials()
	}

	v.upgradeHash(ctx, a, plain)
	return a.Admin, nil
}

// upgradeHash replaces legacy or outdated hashes after a successful login.
// Failures are logged and never fail the login.
func (v *Verifier) upgradeHash(ctx context.Context, a AdminAuth, plain string) {
	if !v.pw.NeedsRehash(a.PasswordHash) {
		return
	}
	h, err := v.pw.Hash(plain)
	if err != nil {
		// Legacy password no longer satisfies the policy; keep the old hash.
		return
	}
	if err := v.store.UpdatePasswordHash(ctx, a.ID, h, v.now()); err != nil {
		v.log.Warn("identity.hash.upgrade.fail", "admin_id", a.ID, "err", err)
		return
	}
	v.log.Info("identity.hash.upgraded", "admin_id", a.ID)
}

// ChangePassword replaces the password of adminID after re-verifying current.
// Errors: ErrInvalidInput (missing fields, PolicyError), ErrNotFound (admin
// vanished), ErrWrongPassword (current does not verify). Nothing is written
// unless every check passes.
func (v *Verifier) ChangePassword(ctx context.Context, adminID, current, next string) error {
	const op = "identity.ChangePassword"

	adminID = strings.TrimSpace(adminID)
	if adminID == "" || current == "" || next == "" {
		return invalid(op, "all fields are required")
	}
	if err := v.pw.Validate(next); err != nil {
		return PolicyError{Op: op, Reason: err, MinLength: v.pw.Policy.MinLength}
	}

	a, err := v.store.GetAdminAuthByID(ctx, adminID)
	if err != nil {
		return err
	}

	ok, err := v.pw.Verify(a.PasswordHash, current)
	if err != nil && !errors.Is(err, password.ErrInvalidHash) {
		return err
	}
	if !ok {
		return OpError{Op: op, Kind: ErrWrongPassword}
	}

	h, err := v.pw.Hash(next)
	if err != nil {
		return err
	}
	return v.store.UpdatePasswordHash(ctx, a.ID, h, v.now())
}

// CreateAdmin provisions an admin with an Argon2id hash of plain.
func (v *Verifier) CreateAdmin(ctx context.Context, username, plain string) (Admin, error) {
	const op = "identity.CreateAdmin"

	username = NormalizeUsername(username)
	if err := validateUsername(username); err != nil {
		return Admin{}, invalid(op, err.Error())
	}
	if err := v.pw.Validate(plain); err != nil {
		return Admin{}, PolicyError{Op: op, Reason: err, MinLength: v.pw.Policy.MinLength}
	}
	h, err := v.pw.Hash(plain)
	if err != nil {
		return Admin{}, err
	}

	now := v.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return Admin{}, err
	}
	return v.store.CreateAdmin(ctx, CreateAdminInput{
		ID:           id,
		Username:     username,
		PasswordHash: h,
		Now:          now,
	})
}

func validateUsername(u string) error {
	if u == "" {
		return errors.New("username is required")
	}
	if utf8.RuneCountInString(u) > MaxUsernameLen {
		return fmt.Errorf("username longer than %d characters", MaxUsernameLen)
	}
	for _, r := range u {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return errors.New("username must not contain whitespace")
		}
	}
	return nil
}
