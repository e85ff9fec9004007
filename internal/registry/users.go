package registry

import (
	"context"
	"sync"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

// MemoryUsers is the in-memory user store paired with the memory registry.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]domain.User)}
}

func (m *MemoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := u
	return &clone, nil
}
