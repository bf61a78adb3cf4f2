package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development mode and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]AdminAuth
	idByName   map[string]string
	failWrites error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]AdminAuth),
		idByName: make(map[string]string),
	}
}

// FailWrites makes every subsequent write return err (nil restores normal behavior).
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	s.failWrites = err
	s.mu.Unlock()
}

func (s *MemoryStore) GetAdminAuthByUsername(ctx context.Context, username string) (AdminAuth, error) {
	if err := ctx.Err(); err != nil {
		return AdminAuth{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByName[username]
	if !ok {
		return AdminAuth{}, NotFoundError{Op: "identity.GetAdminAuthByUsername", Resource: "admin"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) GetAdminAuthByID(ctx context.Context, id string) (AdminAuth, error) {
	if err := ctx.Err(); err != nil {
		return AdminAuth{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return AdminAuth{}, NotFoundError{Op: "identity.GetAdminAuthByID", Resource: "admin"}
	}
	return a, nil
}

func (s *MemoryStore) CreateAdmin(ctx context.Context, in CreateAdminInput) (Admin, error) {
	const op = "identity.CreateAdmin"

	if err := ctx.Err(); err != nil {
		return Admin{}, err
	}
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Username) == "" || in.PasswordHash == "" {
		return Admin{}, invalid(op, "id, username and password hash are required")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites != nil {
		return Admin{}, s.failWrites
	}
	if _, exists := s.idByName[in.Username]; exists {
		return Admin{}, ConflictError{Op: op, Field: "username"}
	}

	a := AdminAuth{
		Admin:        Admin{ID: in.ID, Username: in.Username, CreatedAt: now},
		PasswordHash: in.PasswordHash,
		UpdatedAt:    now,
	}
	s.byID[in.ID] = a
	s.idByName[in.Username] = in.ID
	return a.Admin, nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id string, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return err
	}
	if hash == "" {
		return invalid(op, "empty hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites != nil {
		return s.failWrites
	}
	a, ok := s.byID[id]
	if !ok {
		return NotFoundError{Op: op, Resource: "admin"}
	}
	a.PasswordHash = hash
	a.UpdatedAt = now
	s.byID[id] = a
	return nil
}

// DeleteAdmin removes an admin. It exists for tests that simulate an admin
// vanishing while a session is still live.
func (s *MemoryStore) DeleteAdmin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.byID[id]; ok {
		delete(s.idByName, a.Username)
		delete(s.byID, id)
	}
}

// Username returns the username for id, used by the in-memory session store
// to resolve the admin join.
func (s *MemoryStore) Username(ctx context.Context, id string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return "", false, nil
	}
	return a.Username, true, nil
}
