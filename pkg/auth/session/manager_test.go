package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager(store *memoryStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerate(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr := newTestManager(store)

	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	key := store.AccessSessionKey("access-1")
	assert.Equal(t, token, store.values[key])
	assert.Equal(t, time.Hour, store.ttls[key])

	_, err = mgr.Generate(context.Background(), "  ")
	assert.Error(t, err)
}

func TestManagerRotate(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr := newTestManager(store)

	oldToken, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	newAccessID, newToken, err := mgr.Rotate(context.Background(), "access-1", oldToken)
	require.NoError(t, err)
	assert.NotEqual(t, "access-1", newAccessID)
	assert.NotEqual(t, oldToken, newToken)

	_, hadOld := store.values[store.AccessSessionKey("access-1")]
	assert.False(t, hadOld, "old session must be invalidated")
	assert.Equal(t, newToken, store.values[store.AccessSessionKey(newAccessID)])
}

func TestManagerRotateRejectsBadToken(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr := newTestManager(store)

	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	_, _, err = mgr.Rotate(context.Background(), "access-1", "forged-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, _, err = mgr.Rotate(context.Background(), "absent-access", "anything")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	mgr := newTestManager(store)

	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	ok, err := mgr.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mgr.Revoke(context.Background(), "access-1"))

	ok, err = mgr.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
