package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/storage"
)

func TestStoreContract(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) storage.Store
	}{
		{
			name: "memory",
			build: func(t *testing.T) storage.Store {
				return storage.NewMemoryStore()
			},
		},
		{
			name: "file",
			build: func(t *testing.T) storage.Store {
				store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
				require.NoError(t, err)
				return store
			},
		},
		{
			name: "redis",
			build: func(t *testing.T) storage.Store {
				mini := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
				t.Cleanup(func() { _ = client.Close() })
				return storage.NewRedisStore(client, "tableside")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			store := testCase.build(t)

			_, ok, err := store.Get(ctx, "missing")
			assert.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "key", "value"))
			value, ok, err := store.Get(ctx, "key")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "value", value)

			require.NoError(t, store.Set(ctx, "key", "replaced"))
			value, _, _ = store.Get(ctx, "key")
			assert.Equal(t, "replaced", value)

			require.NoError(t, store.Delete(ctx, "key"))
			_, ok, err = store.Get(ctx, "key")
			assert.NoError(t, err)
			assert.False(t, ok)

			// Deleting a missing key is not an error.
			assert.NoError(t, store.Delete(ctx, "missing"))
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := storage.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth_token", "persisted"))

	reopened, err := storage.NewFileStore(path)
	require.NoError(t, err)

	value, ok, err := reopened.Get(ctx, "auth_token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestTokenAccessor(t *testing.T) {
	ctx := context.Background()
	tokens := storage.NewTokenAccessor(storage.NewMemoryStore())

	_, ok, err := tokens.Token(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tokens.SetToken(ctx, "bearer-value"))
	token, ok, _ := tokens.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "bearer-value", token)

	require.NoError(t, tokens.ClearToken(ctx))
	_, ok, _ = tokens.Token(ctx)
	assert.False(t, ok)
}

func TestTokenAccessor_EmptyValueReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemoryStore()
	require.NoError(t, backing.Set(ctx, "auth_token", ""))

	tokens := storage.NewTokenAccessor(backing)

	_, ok, err := tokens.Token(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
}
