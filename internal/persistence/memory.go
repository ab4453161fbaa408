package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"prepwise/internal/core"
)

// MemoryStore implements UserStore in process memory. Accounts vanish on
// restart; it exists so the server runs without a database in development.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]core.User
	byUsername map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[uuid.UUID]core.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUsername[user.Username]; exists {
		return ErrUsernameTaken
	}
	s.byID[user.ID] = *user
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryStore) Close() error { return nil }
