package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/furrow/pkg/core"
)

// Watch observes the data directory and emits an event for every collection
// key matching pattern (doublestar syntax, "*" when empty).
// Changes made through this Storage are reported too.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, core.ErrValidation)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		return s.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.handleWatcherError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

// watchLoop is the main event loop. It owns watcher and events.
func (s *Storage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- core.Event) error {
	defer close(events)
	defer s.setWatcherActive(false)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := s.translate(event, pattern)
			if !ok {
				continue
			}
			s.recordEvent()
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.handleWatcherError(wErr)
		}
	}
}

// translate maps a raw fsnotify event to a core.Event, dropping temp files,
// foreign files and keys outside pattern.
func (s *Storage) translate(event fsnotify.Event, pattern string) (core.Event, bool) {
	key, ok := keyFromPath(event.Name)
	if !ok {
		return core.Event{}, false
	}
	if match, err := doublestar.Match(pattern, key); err != nil || !match {
		return core.Event{}, false
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return core.Event{}, false
	}

	// The file changed behind the cache's back.
	s.cache.Delete(key)
	s.config.Logger.Debug("storage event", "type", eType, "key", key)

	return core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()}, true
}

func (s *Storage) handleWatcherError(err error) {
	s.config.Logger.Error("fsnotify error", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

var _ core.Watchable = (*Storage)(nil)
