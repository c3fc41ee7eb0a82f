package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserRepo stores users keyed by exact email.
type UserRepo interface {
	Create(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// MemoryUsers lives for the process lifetime.
type MemoryUsers struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byEmail: make(map[string]model.User)}
}

func (m *MemoryUsers) Create(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrUserExists
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryUsers) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEmail)
}
