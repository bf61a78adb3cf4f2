package session

import (
	"context"
	"sync"
	"time"
)

// AdminDirectory resolves admin usernames for the in-memory store.
// identity.MemoryStore satisfies it.
type AdminDirectory interface {
	Username(ctx context.Context, adminID string) (string, bool, error)
}

type memRow struct {
	adminID   string
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is an in-process Store for development mode and tests.
// A single mutex makes Create atomic the way the Postgres transaction is.
type MemoryStore struct {
	admins AdminDirectory

	mu      sync.Mutex
	byHash  map[string]memRow
	byAdmin map[string]map[string]struct{}
	failAll error
}

// NewMemoryStore creates a MemoryStore joined against admins.
func NewMemoryStore(admins AdminDirectory) *MemoryStore {
	return &MemoryStore{
		admins:  admins,
		byHash:  make(map[string]memRow),
		byAdmin: make(map[string]map[string]struct{}),
	}
}

// FailAll makes every call return err until reset with nil.
func (s *MemoryStore) FailAll(err error) {
	s.mu.Lock()
	s.failAll = err
	s.mu.Unlock()
}

func (s *MemoryStore) Create(ctx context.Context, now time.Time, adminID string, tokenHash string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok, err := s.admins.Username(ctx, adminID); err != nil {
		return err
	} else if !ok {
		return ErrAdminNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll != nil {
		return s.failAll
	}
	s.deleteAdminLocked(adminID)
	s.byHash[tokenHash] = memRow{adminID: adminID, createdAt: now, expiresAt: expiresAt}
	s.byAdmin[adminID] = map[string]struct{}{tokenHash: {}}
	return nil
}

func (s *MemoryStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	if s.failAll != nil {
		s.mu.Unlock()
		return Row{}, s.failAll
	}
	r, ok := s.byHash[tokenHash]
	s.mu.Unlock()
	if !ok {
		return Row{}, ErrSessionNotFound
	}

	username, found, err := s.admins.Username(ctx, r.adminID)
	if err != nil {
		return Row{}, err
	}
	if !found {
		// Admin deleted: behave like ON DELETE CASCADE.
		s.mu.Lock()
		s.deleteHashLocked(tokenHash)
		s.mu.Unlock()
		return Row{}, ErrSessionNotFound
	}

	return Row{
		AdminID:   r.adminID,
		Username:  username,
		CreatedAt: r.createdAt,
		ExpiresAt: r.expiresAt,
	}, nil
}

func (s *MemoryStore) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll != nil {
		return false, s.failAll
	}
	return s.deleteHashLocked(tokenHash), nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll != nil {
		return 0, s.failAll
	}
	n := 0
	for h, r := range s.byHash {
		if !r.expiresAt.After(now) {
			s.deleteHashLocked(h)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteAllForAdmin(ctx context.Context, adminID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll != nil {
		return 0, s.failAll
	}
	return s.deleteAdminLocked(adminID), nil
}

func (s *MemoryStore) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byAdmin[adminID]), nil
}

// Len returns the total number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byHash)
}

func (s *MemoryStore) deleteHashLocked(tokenHash string) bool {
	r, ok := s.byHash[tokenHash]
	if !ok {
		return false
	}
	delete(s.byHash, tokenHash)
	if set := s.byAdmin[r.adminID]; set != nil {
		delete(set, tokenHash)
		if len(set) == 0 {
			delete(s.byAdmin, r.adminID)
		}
	}
	return true
}

func (s *MemoryStore) deleteAdminLocked(adminID string) int {
	set := s.byAdmin[adminID]
	for h := range set {
		delete(s.byHash, h)
	}
	delete(s.byAdmin, adminID)
	return len(set)
}
