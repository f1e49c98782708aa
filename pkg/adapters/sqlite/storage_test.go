package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/core"
)

func openTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "furrow.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s, path
}

func TestStorage_RoundTrip(t *testing.T) {
	s, _ := openTestStorage(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "notes")
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.Save(ctx, "notes", []byte(`{"1":[]}`)))
	require.NoError(t, s.Save(ctx, "notes", []byte(`{"1":[{"text":"hi"}]}`)))

	got, err := s.Load(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, `{"1":[{"text":"hi"}]}`, string(got))
	assert.Equal(t, 1, s.State().(StorageState).Keys)

	require.NoError(t, s.Delete(ctx, "notes"))
	_, err = s.Load(ctx, "notes")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStorage_PersistsAcrossOpen(t *testing.T) {
	s, path := openTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "clients", []byte(`[]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Initialize(ctx))

	got, err := reopened.Load(ctx, "clients")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenReadOnly(t *testing.T) {
	s, path := openTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "deals", []byte(`[]`)))
	require.NoError(t, s.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()
	require.NoError(t, ro.Initialize(ctx))

	got, err := ro.Load(ctx, "deals")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.ErrorIs(t, ro.Save(ctx, "deals", []byte(`[1]`)), core.ErrReadOnly)
	assert.ErrorIs(t, ro.Delete(ctx, "deals"), core.ErrReadOnly)
	assert.True(t, ro.State().(StorageState).ReadOnly)
}

func TestOpenReadOnly_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	ro, err := OpenReadOnly(path)
	if err == nil {
		defer ro.Close()
		err = ro.Initialize(context.Background())
	}
	assert.Error(t, err)
}
