package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// singleKeyStore hides SaveMany so SaveAll falls back to per-key saves.
type singleKeyStore struct {
	inner *MemoryStore
	saves int
}

func (s *singleKeyStore) Save(ctx context.Context, key string, value []byte) error {
	s.saves++
	return s.inner.Save(ctx, key, value)
}

func (s *singleKeyStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Load(ctx, key)
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, found, err := s.Load(ctx, KeyServiceRequests)
	require.NoError(t, err)
	assert.False(t, found, "fresh store should not contain any key")

	require.NoError(t, s.Save(ctx, KeyServiceRequests, []byte(`[{"id":1}]`)))
	value, found, err := s.Load(ctx, KeyServiceRequests)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":1}]`, string(value))

	require.NoError(t, s.Save(ctx, KeyServiceRequests, []byte(`[]`)))
	value, _, err = s.Load(ctx, KeyServiceRequests)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value), "save should overwrite the previous value")

	require.NoError(t, SaveAll(ctx, s, map[string][]byte{
		KeyServiceRequests: []byte(`[{"id":2}]`),
		KeyNotifications:   []byte(`[{"id":7}]`),
	}))
	value, _, err = s.Load(ctx, KeyServiceRequests)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2}]`, string(value))
	value, found, err = s.Load(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":7}]`, string(value))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newTestSQLiteStore(t))
}

func TestSQLiteStoreMigrationsAreIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.runMigrations())

	var version int
	require.NoError(t, s.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, len(migrations), version)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, s.Save(ctx, "k", value))
	value[0] = 'x'

	loaded, _, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(loaded))

	loaded[0] = 'y'
	again, _, _ := s.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestSaveAllFallsBackToSingleSaves(t *testing.T) {
	s := &singleKeyStore{inner: NewMemoryStore()}

	require.NoError(t, SaveAll(context.Background(), s, map[string][]byte{
		KeyServiceRequests: []byte("[]"),
		KeyNotifications:   []byte("[]"),
		KeyArtisans:        []byte("[]"),
	}))
	assert.Equal(t, 3, s.saves)
}
