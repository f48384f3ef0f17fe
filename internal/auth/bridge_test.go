package auth_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub-service/internal/auth"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/local"
	"quizhub-service/internal/infra/memory"
)

func newBridge(t *testing.T, secret string) (*auth.Bridge, *memory.RecordStore, *local.Store) {
	t.Helper()
	store := memory.NewRecordStore()
	kv := local.NewStore(filepath.Join(t.TempDir(), "local.json"))
	bridge, err := auth.NewBridge(store, kv, secret)
	require.NoError(t, err)
	return bridge, store, kv
}

func TestSyncCreatesUserOnce(t *testing.T) {
	bridge, store, _ := newBridge(t, "test-secret")
	ctx := context.Background()
	identity := domain.Identity{
		ID:        "uid-1",
		Email:     "alice@example.com",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	first, err := bridge.Sync(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, identity.CreatedAt, first.CreatedAt)

	second, err := bridge.Sync(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	users, err := store.GetByIDs(ctx, []string{"uid-1"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSyncPrefersDisplayName(t *testing.T) {
	bridge, _, _ := newBridge(t, "test-secret")

	user, err := bridge.Sync(context.Background(), domain.Identity{
		ID:          "uid-2",
		Email:       "bob@example.com",
		DisplayName: "Bobby",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", user.Username)
}

func TestCachedIdentityRoundTrip(t *testing.T) {
	bridge, _, _ := newBridge(t, "test-secret")

	require.NoError(t, bridge.CacheIdentity("uid-42"))
	id, err := bridge.ResolveCachedIdentity()
	require.NoError(t, err)
	assert.Equal(t, "uid-42", id)

	require.NoError(t, bridge.ClearCachedIdentity())
	_, err = bridge.ResolveCachedIdentity()
	assert.ErrorIs(t, err, domain.ErrNoCachedIdentity)
}

func TestCorruptedBlobReadsAsAbsent(t *testing.T) {
	bridge, _, kv := newBridge(t, "test-secret")

	require.NoError(t, bridge.CacheIdentity("uid-42"))
	require.NoError(t, kv.Set("identity_uid", "not-a-real-ciphertext"))

	_, err := bridge.ResolveCachedIdentity()
	assert.ErrorIs(t, err, domain.ErrNoCachedIdentity)
}

func TestWrongSecretReadsAsAbsent(t *testing.T) {
	store := memory.NewRecordStore()
	path := filepath.Join(t.TempDir(), "local.json")

	writer, err := auth.NewBridge(store, local.NewStore(path), "secret-one")
	require.NoError(t, err)
	require.NoError(t, writer.CacheIdentity("uid-42"))

	reader, err := auth.NewBridge(store, local.NewStore(path), "secret-two")
	require.NoError(t, err)
	_, err = reader.ResolveCachedIdentity()
	assert.ErrorIs(t, err, domain.ErrNoCachedIdentity)
}

func TestEmptySecretRejected(t *testing.T) {
	store := memory.NewRecordStore()
	_, err := auth.NewBridge(store, local.NewStore(filepath.Join(t.TempDir(), "local.json")), "")
	assert.Error(t, err)
}

func TestDarkModePreference(t *testing.T) {
	bridge, _, _ := newBridge(t, "test-secret")

	assert.False(t, bridge.DarkMode())
	require.NoError(t, bridge.SetDarkMode(true))
	assert.True(t, bridge.DarkMode())
	require.NoError(t, bridge.SetDarkMode(false))
	assert.False(t, bridge.DarkMode())
}
