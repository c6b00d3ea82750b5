// Package redis stores inventory documents as Redis string values.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/stockroom/internal/domain/inventory"
)

// KeyPrefix is prepended to document names to form Redis keys.
const KeyPrefix = "inventory:doc:"

var _ inventory.Storage = (*Storage)(nil)

// Storage implements inventory.Storage on a Redis client.
type Storage struct {
	client goredis.UniversalClient
}

// New returns a Storage using client.
func New(client goredis.UniversalClient) *Storage {
	return &Storage{client: client}
}

// Read returns the named document.
func (s *Storage) Read(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.Wrap(inventory.ErrInvalidDocumentName, "empty name")
	}
	data, err := s.client.Get(ctx, KeyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, errors.Wrapf(inventory.ErrDocumentNotFound, "get %s", name)
		}
		return nil, errors.Wrapf(err, "get %s", name)
	}
	return data, nil
}

// Write replaces the named document. Stored documents never expire.
func (s *Storage) Write(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.Wrap(inventory.ErrInvalidDocumentName, "empty name")
	}
	if err := s.client.Set(ctx, KeyPrefix+name, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "set %s", name)
	}
	return nil
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
