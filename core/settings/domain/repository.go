package domain

import "context"

// StorageKey is the single key the settings record lives under.
const StorageKey = "grand-opus-settings"

// ISettingsRepository is a string key/value backend. Get returns "" with a
// nil error when the key does not exist.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
