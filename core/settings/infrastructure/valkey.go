package infrastructure

import (
	"context"

	"github.com/AzielCF/az-settings/infrastructure/valkey"
)

// SettingsValkeyRepository keeps each key as a plain string under the
// client's prefix, e.g. "azset:settings:grand-opus-settings".
type SettingsValkeyRepository struct {
	client *valkey.Client
}

func NewSettingsValkeyRepository(client *valkey.Client) *SettingsValkeyRepository {
	return &SettingsValkeyRepository{client: client}
}

func (r *SettingsValkeyRepository) key(name string) string {
	return r.client.Key("settings", name)
}

// InitSchema is a no-op; valkey needs no schema.
func (r *SettingsValkeyRepository) InitSchema(ctx context.Context) error {
	return nil
}

func (r *SettingsValkeyRepository) Get(ctx context.Context, key string) (string, error) {
	inner := r.client.Inner()
	val, err := inner.Do(ctx, inner.B().Get().Key(r.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *SettingsValkeyRepository) Set(ctx context.Context, key string, value string) error {
	inner := r.client.Inner()
	return inner.Do(ctx, inner.B().Set().Key(r.key(key)).Value(value).Build()).Error()
}

func (r *SettingsValkeyRepository) Delete(ctx context.Context, key string) error {
	inner := r.client.Inner()
	return inner.Do(ctx, inner.B().Del().Key(r.key(key)).Build()).Error()
}

func (r *SettingsValkeyRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
