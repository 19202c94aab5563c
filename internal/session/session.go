// Package session issues and tracks the mock authentication session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// Keys under which the session is handed to BlobStorage.
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", core.ErrValidation)
	ErrInvalidToken       = errors.New("malformed token")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials carries login or registration input. A non-empty Name
// means registration.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store is the session capability the rest of the program depends on.
type Store interface {
	Issue(ctx context.Context, creds Credentials) (Session, error)
	Validate(ctx context.Context, token string) (User, error)
	Clear(ctx context.Context) error
	Current(ctx context.Context) (Session, bool)
}

// BlobStorage persists opaque string values by key. It is where an issued
// session survives between processes.
type BlobStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStorage is a BlobStorage that lives as long as the process.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }
