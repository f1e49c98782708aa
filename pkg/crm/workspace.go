// Package crm implements the CRM entities (clients, deals, tasks and notes)
// on top of the record store, plus CSV import/export, reporting and the
// dashboard's session flag.
//
// Every collection is persisted independently under its own key. There is no
// transaction spanning collections: editing a client does not refresh the
// client name cached on its deals, and deleting a client leaves its deals,
// tasks and notes in place.
package crm

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"
	"golang.org/x/sync/semaphore"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/csvcodec"
)

// Config holds the collaborators of a Workspace. Zero values select defaults.
type Config struct {
	Logger *slog.Logger
	IDs    IDGenerator
	Clock  func() time.Time
}

// Workspace bundles the four collections over a single storage.
type Workspace struct {
	Clients *Clients
	Deals   *Deals
	Tasks   *Tasks
	Notes   *Notes

	store     core.Storage
	logger    *slog.Logger
	codec     *csvcodec.Codec
	importing *semaphore.Weighted
	inFlight  atomic.Bool // set while an import holds the slot
}

// NewWorkspace creates a workspace over store.
func NewWorkspace(store core.Storage, cfg Config) *Workspace {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.IDs == nil {
		cfg.IDs = UUIDGenerator{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	clients := newClients(store, cfg.IDs, cfg.Logger)
	return &Workspace{
		Clients:   clients,
		Deals:     newDeals(store, clients, cfg.IDs, cfg.Logger),
		Tasks:     newTasks(store, cfg.IDs, cfg.Logger),
		Notes:     newNotes(store, cfg.Clock, cfg.Logger),
		store:     store,
		logger:    cfg.Logger,
		codec:     csvcodec.New(cfg.Logger),
		importing: semaphore.NewWeighted(1),
	}
}

// Storage returns the underlying storage.
func (w *Workspace) Storage() core.Storage {
	return w.store
}

// ClientDetails is a client together with everything that references it.
type ClientDetails struct {
	Client Client `json:"client"`
	Deals  []Deal `json:"deals"`
	Tasks  []Task `json:"tasks"`
	Notes  []Note `json:"notes"`
}

// ClientDetails returns the client with the given id and its deals, tasks
// and notes.
func (w *Workspace) ClientDetails(ctx context.Context, id string) (ClientDetails, error) {
	client, err := w.Clients.Get(ctx, id)
	if err != nil {
		return ClientDetails{}, err
	}

	deals, err := w.Deals.List(ctx)
	if err != nil {
		return ClientDetails{}, err
	}
	own := []Deal{}
	for _, d := range deals {
		if d.ClientID == id {
			own = append(own, d)
		}
	}

	tasks, err := w.Tasks.ForClient(ctx, id)
	if err != nil {
		return ClientDetails{}, err
	}
	notes, err := w.Notes.List(ctx, id)
	if err != nil {
		return ClientDetails{}, err
	}

	return ClientDetails{Client: client, Deals: own, Tasks: tasks, Notes: notes}, nil
}

// Collections lists every storage key a workspace writes.
var Collections = []string{KeyClients, KeyDeals, KeyTasks, KeyNotes, KeyAuth}

// WorkspaceState exposes internal state for observability.
type WorkspaceState struct {
	Storage   any  `json:"storage,omitempty"`
	Importing bool `json:"importing"`
}

// State implements introspection.Introspectable.
func (w *Workspace) State() any {
	st := WorkspaceState{}
	if in, ok := w.store.(introspection.Introspectable); ok {
		st.Storage = in.State()
	}
	st.Importing = w.inFlight.Load()
	return st
}

// ComponentType implements introspection.Component.
func (w *Workspace) ComponentType() string {
	return "crm-workspace"
}

var _ introspection.Introspectable = (*Workspace)(nil)
var _ introspection.Component = (*Workspace)(nil)
