package session

import (
	"context"
	"sync"
)

// Ключи постоянного хранилища сессии
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Keys - все ключи сессии; очищаются и записываются вместе
var Keys = []string{KeyToken, KeyRefreshToken, KeyUser}

// Storage - постоянное хранилище ключ-значение (аналог localStorage).
// Get возвращает "" для отсутствующего ключа.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Tokens отдает bearer токен прямо из хранилища
type Tokens struct {
	Storage Storage
}

func (t Tokens) Token(ctx context.Context) string {
	token, _ := t.Storage.Get(ctx, KeyToken)
	return token
}

// MemoryStorage хранит значения в памяти процесса
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage создает пустое хранилище в памяти
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
