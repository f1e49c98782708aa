package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/typed"
)

// NoteDateLayout is the display format of a note's creation time.
const NoteDateLayout = "2006-01-02 15:04:05"

// KeyNotes is the storage key of the note collection.
const KeyNotes = "notes"

// Note is a free-text remark on a client.
type Note struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// Notes maps client ids to their notes, oldest first.
type Notes struct {
	col   *typed.Collection[map[string][]Note]
	clock func() time.Time
}

func newNotes(store core.Storage, clock func() time.Time, logger *slog.Logger) *Notes {
	return &Notes{
		col:   typed.NewCollection(store, KeyNotes, seedNotes, logger),
		clock: clock,
	}
}

// List returns the notes of a client in insertion order.
func (n *Notes) List(ctx context.Context, clientID string) ([]Note, error) {
	all, err := n.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	notes := all[clientID]
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// Add appends a note to a client, stamped with the current time.
func (n *Notes) Add(ctx context.Context, clientID, text string) (Note, error) {
	clientID = strings.TrimSpace(clientID)
	text = strings.TrimSpace(text)
	var missing []string
	if clientID == "" {
		missing = append(missing, "clientId")
	}
	if text == "" {
		missing = append(missing, "text")
	}
	if err := requireFields("note", missing); err != nil {
		return Note{}, err
	}

	note := Note{Text: text, Date: n.clock().Format(NoteDateLayout)}
	_, err := n.col.Update(ctx, func(all map[string][]Note) (map[string][]Note, error) {
		if all == nil {
			all = make(map[string][]Note)
		}
		all[clientID] = append(all[clientID], note)
		return all, nil
	})
	if err != nil {
		return Note{}, fmt.Errorf("add note: %w", err)
	}
	return note, nil
}
