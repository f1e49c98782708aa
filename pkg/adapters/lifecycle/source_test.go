package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/core"
)

func TestSource_ShapesTrackedCollections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventModify, Key: "clients", Timestamp: 1700000000}
	in <- core.Event{Type: core.EventCreate, Key: "scratch"}
	in <- core.Event{Type: core.EventDelete, Key: "auth"}
	close(in)

	src := NewSource(in, "clients", "deals", "auth")
	require.NoError(t, src.Start(ctx))

	var got []Change
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				require.Len(t, got, 2, "untracked keys are dropped")
				assert.Equal(t, "clients modified", got[0].String())
				assert.Equal(t, time.Unix(1700000000, 0), got[0].At)
				assert.Equal(t, "auth deleted", got[1].String())
				return
			}
			change, ok := e.(Change)
			require.True(t, ok)
			got = append(got, change)
		case <-timeout:
			t.Fatal("source did not close")
		}
	}
}

func TestSource_NoFilterForwardsEverything(t *testing.T) {
	in := make(chan core.Event, 1)
	in <- core.Event{Type: core.EventCreate, Key: "anything"}
	close(in)

	src := NewSource(in)
	require.NoError(t, src.Start(context.Background()))

	select {
	case e := <-src.Events():
		assert.Equal(t, "anything created", e.String())
	case <-time.After(2 * time.Second):
		t.Fatal("no event forwarded")
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop after cancel")
	}
}
