package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RayenHanafi/Mosque-Noor/cmd/security/token"
)

// Reap modes reported to the reap observer.
const (
	ReapLazy    = "lazy"
	ReapCleanup = "cleanup"
	ReapRevoke  = "revoke"
)

// Service implements the admin session lifecycle.
type Service struct {
	cfg    Config
	store  Store
	hasher token.Hasher
	onReap func(mode string, n int)
}

// Issued is the result of creating a session. Token is shown to the client
// exactly once and never logged.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is the admin bound to a valid session.
type Identity struct {
	AdminID   string
	Username  string
	ExpiresAt time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithHasher sets the token digest function (default: plain SHA-256).
func WithHasher(h token.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithReapObserver registers fn to be called with the number of rows removed
// by lazy reaping, cleanup and revocation.
func WithReapObserver(fn func(mode string, n int)) Option {
	return func(s *Service) { s.onReap = fn }
}

// NewService constructs a Service. It returns ErrConfig for invalid cfg.
func NewService(cfg Config, store Store, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrConfig
	}
	s := &Service{cfg: cfg, store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// TTL returns the configured session lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

func (s *Service) reaped(mode string, n int) {
	if s.onReap != nil && n > 0 {
		s.onReap(mode, n)
	}
}

// CreateSession issues a new token for adminID, expiring at now+TTL. Any
// previous session of the admin stops validating once this returns.
func (s *Service) CreateSession(ctx context.Context, now time.Time, adminID string) (Issued, error) {
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return Issued{}, ErrAdminNotFound
	}

	plain, err := newOpaqueToken(s.cfg.TokenBytes)
	if err != nil {
		return Issued{}, err
	}
	expiresAt := now.Add(s.cfg.TTL)

	if err := s.store.Create(ctx, now, adminID, s.hasher.Digest(plain), expiresAt); err != nil {
		return Issued{}, err
	}
	return Issued{Token: plain, ExpiresAt: expiresAt}, nil
}

// ValidateSession resolves tok to its admin. A session is valid while
// now < expires_at; at or after expiry the row is deleted and ErrSessionExpired
// is returned.
func (s *Service) ValidateSession(ctx context.Context, now time.Time, tok string) (Identity, error) {
	if tok == "" || len(tok) > maxTokenLen {
		return Identity{}, ErrInvalidToken
	}
	hash := s.hasher.Digest(tok)

	row, err := s.store.GetByTokenHash(ctx, hash)
	if err != nil {
		return Identity{}, err
	}

	if !now.Before(row.ExpiresAt) {
		removed, derr := s.store.DeleteByTokenHash(ctx, hash)
		if derr != nil {
			return Identity{}, errors.Join(ErrSessionExpired, derr)
		}
		if removed {
			s.reaped(ReapLazy, 1)
		}
		return Identity{}, ErrSessionExpired
	}

	return Identity{
		AdminID:   row.AdminID,
		Username:  row.Username,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// InvalidateSession deletes the session for tok. It reports whether a row was
// removed; unknown and empty tokens succeed with false.
func (s *Service) InvalidateSession(ctx context.Context, tok string) (bool, error) {
	if tok == "" || len(tok) > maxTokenLen {
		return false, nil
	}
	return s.store.DeleteByTokenHash(ctx, s.hasher.Digest(tok))
}

// CleanupExpiredSessions removes every session with expires_at <= now.
func (s *Service) CleanupExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	n, err := s.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	s.reaped(ReapCleanup, n)
	return n, nil
}

// RevokeAll deletes every session of adminID.
func (s *Service) RevokeAll(ctx context.Context, adminID string) (int, error) {
	n, err := s.store.DeleteAllForAdmin(ctx, adminID)
	if err != nil {
		return 0, err
	}
	s.reaped(ReapRevoke, n)
	return n, nil
}

// ActiveSessions returns how many session rows adminID holds.
func (s *Service) ActiveSessions(ctx context.Context, adminID string) (int, error) {
	return s.store.CountForAdmin(ctx, adminID)
}
