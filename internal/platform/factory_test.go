package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/internal/platform"
	"github.com/aretw0/furrow/pkg/adapters/memory"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

func TestOpen_Adapters(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		uri  string
		opts []platform.Option
	}{
		{"fs", filepath.Join(t.TempDir(), "data"), nil},
		{"memory", "", []platform.Option{platform.WithAdapter(platform.AdapterMemory)}},
		{"sqlite", filepath.Join(t.TempDir(), "nested", "furrow.db"), []platform.Option{platform.WithAdapter(platform.AdapterSQLite)}},
		{"redis", mr.Addr(), []platform.Option{platform.WithAdapter(platform.AdapterRedis), platform.WithKeyPrefix("test")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := platform.Open(ctx, tt.uri, tt.opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = platform.Close(ws.Storage()) })

			added, err := ws.Clients.Add(ctx, crm.Client{Name: "Acme", Email: "a@acme.test"})
			require.NoError(t, err)

			got, err := ws.Clients.Get(ctx, added.ID)
			require.NoError(t, err)
			assert.Equal(t, "Acme", got.Name)
		})
	}

	assert.True(t, mr.Exists("test:clients"))
}

func TestOpen_RedisURL(t *testing.T) {
	mr := miniredis.RunT(t)
	ws, err := platform.Open(context.Background(), "redis://"+mr.Addr()+"/0", platform.WithAdapter(platform.AdapterRedis))
	require.NoError(t, err)
	defer platform.Close(ws.Storage())

	require.NoError(t, ws.Login(context.Background(), "admin", "crm123"))
	val, err := mr.Get("furrow:auth")
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}

func TestOpen_InjectedStorage(t *testing.T) {
	store := memory.NewStorage()
	ws, err := platform.Open(context.Background(), "ignored",
		platform.WithStorage(store),
		platform.WithIDGenerator(crm.IDFunc(func() string { return "fixed" })),
	)
	require.NoError(t, err)
	assert.Same(t, store, ws.Storage())

	c, err := ws.Clients.Add(context.Background(), crm.Client{Name: "A", Email: "a@x"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", c.ID)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := platform.Open(ctx, "x", platform.WithAdapter("s3"))
	assert.ErrorContains(t, err, "unknown adapter")

	_, err = platform.Open(ctx, "")
	assert.Error(t, err)

	missing := filepath.Join(t.TempDir(), "missing")
	_, err = platform.Open(ctx, missing, platform.WithMustExist(true))
	assert.Error(t, err)
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpen_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ws, err := platform.Open(ctx, dir, platform.WithReadOnly(true))
	require.NoError(t, err)

	clients, err := ws.Clients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3)

	_, err = ws.Clients.Add(ctx, crm.Client{Name: "A", Email: "a@x"})
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestOpen_ReadOnlyAllAdapters(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	// The sqlite database must exist before it can be opened read-only.
	dbPath := filepath.Join(t.TempDir(), "furrow.db")
	seeded, err := platform.Open(ctx, dbPath, platform.WithAdapter(platform.AdapterSQLite))
	require.NoError(t, err)
	require.NoError(t, platform.Close(seeded.Storage()))

	tests := []struct {
		name string
		uri  string
		opts []platform.Option
	}{
		{"sqlite", dbPath, []platform.Option{platform.WithAdapter(platform.AdapterSQLite)}},
		{"redis", mr.Addr(), []platform.Option{platform.WithAdapter(platform.AdapterRedis)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := platform.Open(ctx, tt.uri, append(tt.opts, platform.WithReadOnly(true))...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = platform.Close(ws.Storage()) })

			clients, err := ws.Clients.List(ctx)
			require.NoError(t, err)
			assert.Len(t, clients, 3)

			_, err = ws.Clients.Add(ctx, crm.Client{Name: "A", Email: "a@x"})
			assert.ErrorIs(t, err, core.ErrReadOnly)
			assert.ErrorIs(t, ws.Logout(ctx), core.ErrReadOnly)
		})
	}
	assert.False(t, mr.Exists("furrow:clients"))

	_, err = platform.Open(ctx, "", platform.WithAdapter(platform.AdapterMemory), platform.WithReadOnly(true))
	assert.ErrorIs(t, err, core.ErrValidation)
}
