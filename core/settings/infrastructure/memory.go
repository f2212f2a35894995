package infrastructure

import (
	"context"
	"sync"
)

// SettingsMemoryRepository keeps values for the life of the process.
type SettingsMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewSettingsMemoryRepository() *SettingsMemoryRepository {
	return &SettingsMemoryRepository{data: make(map[string]string)}
}

func (r *SettingsMemoryRepository) InitSchema(ctx context.Context) error {
	return nil
}

func (r *SettingsMemoryRepository) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data[key], nil
}

func (r *SettingsMemoryRepository) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
	return nil
}

func (r *SettingsMemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *SettingsMemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
