package account

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps accounts in process memory. Used by tests and by the API
// when no database is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*Account
	byUsername map[string]string // username -> id
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Account),
		byUsername: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, a *Account) error {
	username := normalizeUsername(a.Username)
	if username == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[username]; taken {
		return ErrAlreadyExists
	}
	cp := *a
	cp.Username = username
	s.byID[cp.ID] = &cp
	s.byUsername[username] = cp.ID
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[normalizeUsername(username)]
	if !ok {
		return nil, ErrNotFound
	}
	a := s.byID[id]
	cp := *a
	return &cp, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
