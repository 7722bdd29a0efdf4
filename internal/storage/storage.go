package storage

import "context"

// Store is the durable client-side key/value storage behind the persisted
// auth token and the persisted restaurant selection. Values are opaque
// strings; Get reports presence separately so an empty value is storable.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
