package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/core"
)

func TestWatch_EmitsMatchingKeys(t *testing.T) {
	s, dir := setupStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "deal*")
	require.NoError(t, err)

	// Non-matching key and foreign file must be filtered out.
	require.NoError(t, s.Save(ctx, "clients", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0644))
	require.NoError(t, s.Save(ctx, "deals", []byte(`[]`)))

	select {
	case e := <-events:
		assert.Equal(t, "deals", e.Key)
		assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for deals event")
	}

	assert.Eventually(t, func() bool {
		st := s.State().(StorageState)
		return st.WatcherActive && st.LastEvent != nil
	}, time.Second, 10*time.Millisecond)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	s, _ := setupStorage(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.Watch(ctx, "")
	require.NoError(t, err)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				assert.False(t, s.State().(StorageState).WatcherActive)
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}

func TestWatch_InvalidPattern(t *testing.T) {
	s, _ := setupStorage(t)
	_, err := s.Watch(context.Background(), "[")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}
