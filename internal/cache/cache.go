package cache

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrMiss = errors.New("cache miss")

// Cache stores encoded values with a store-wide TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes the cached value for key into dst. It returns ErrMiss when
// the key is absent or expired.
func GetJSON(ctx context.Context, c Cache, key string, dst any) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func SetJSON(ctx context.Context, c Cache, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw)
}
