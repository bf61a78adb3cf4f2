package content

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for development mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
	items    map[string]Announcement
	fail     error
}

// NewMemoryStore returns a store holding an empty settings row.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Announcement)}
}

// FailAll makes every call return err until reset with nil.
func (s *MemoryStore) FailAll(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *MemoryStore) GetSettings(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fail != nil {
		return Settings{}, s.fail
	}
	return s.settings, nil
}

func (s *MemoryStore) PutSettings(ctx context.Context, in Settings) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return Settings{}, s.fail
	}
	s.settings = in
	return in, nil
}

func (s *MemoryStore) InsertAnnouncement(ctx context.Context, a Announcement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	s.items[a.ID] = a
	return nil
}

func (s *MemoryStore) DeleteAnnouncement(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return false, s.fail
	}
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *MemoryStore) ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]Announcement, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
