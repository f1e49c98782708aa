// Package lifecycle exposes storage change events as a lifecycle.Source so
// that supervised consumers can subscribe to them.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/furrow/pkg/core"
)

// Change is a storage event narrowed to one tracked collection.
type Change struct {
	Collection string         `json:"collection"`
	Type       core.EventType `json:"type"`
	At         time.Time      `json:"at"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Collection, c.Verb())
}

// Verb describes the change in past tense.
func (c Change) Verb() string {
	switch c.Type {
	case core.EventCreate:
		return "created"
	case core.EventDelete:
		return "deleted"
	default:
		return "modified"
	}
}

type changeSource struct {
	events      <-chan core.Event
	collections []string
	out         chan lifecycle.Event
}

// NewSource turns events from core.Watchable into Change values. Only keys in
// collections are forwarded; other files in the data directory are ignored.
// With no collections every key is forwarded.
// Events() closes once the underlying channel closes or Start's context ends.
func NewSource(events <-chan core.Event, collections ...string) lifecycle.Source {
	return &changeSource{
		events:      events,
		collections: collections,
		out:         make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				change, ok := s.shape(e)
				if !ok {
					continue
				}
				select {
				case s.out <- change:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *changeSource) shape(e core.Event) (Change, bool) {
	if len(s.collections) > 0 && !slices.Contains(s.collections, e.Key) {
		return Change{}, false
	}
	at := time.Now()
	if e.Timestamp > 0 {
		at = time.Unix(e.Timestamp, 0)
	}
	return Change{Collection: e.Key, Type: e.Type, At: at}, true
}
