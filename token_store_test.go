package authclient_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	authclient "github.com/goliatone/go-authclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStoreRoundTrip(t *testing.T) {
	store := authclient.NewMemoryTokenStore()

	_, err := store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)

	require.NoError(t, store.Save("token-1", time.Hour))

	token, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	require.NoError(t, store.Clear())

	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)
}

func TestMemoryTokenStoreExpiresEntries(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	store := authclient.NewMemoryTokenStore().WithClock(func() time.Time { return clock })

	require.NoError(t, store.Save("token-1", time.Hour))

	token, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	clock = now.Add(time.Hour)

	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)
}

func TestMemoryTokenStoreDefaultsTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	store := authclient.NewMemoryTokenStore().WithClock(func() time.Time { return clock })

	require.NoError(t, store.Save("token-1", 0))

	clock = now.Add(23 * time.Hour)
	token, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	clock = now.Add(25 * time.Hour)
	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session", "token.json")
	store, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)

	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)

	require.NoError(t, store.Save("token-1", time.Hour))

	token, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	require.NoError(t, store.Clear())

	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)
}

func TestFileTokenStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	first, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save("token-1", time.Hour))

	second, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)

	token, err := second.Read()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestFileTokenStoreFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("token-1", time.Hour))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileTokenStoreRemovesExpiredEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	store, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)
	store.WithClock(func() time.Time { return clock })

	require.NoError(t, store.Save("token-1", time.Hour))

	clock = now.Add(2 * time.Hour)
	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileTokenStoreDiscardsCorruptEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store, err := authclient.NewFileTokenStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err = store.Read()
	assert.ErrorIs(t, err, authclient.ErrNoToken)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileTokenStoreRequiresPath(t *testing.T) {
	_, err := authclient.NewFileTokenStore("")
	require.Error(t, err)
}
