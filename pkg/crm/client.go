package crm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/csvcodec"
	"github.com/aretw0/furrow/pkg/merge"
	"github.com/aretw0/furrow/pkg/typed"
)

// ClientStatus classifies a client.
type ClientStatus string

const (
	ClientActive    ClientStatus = "Active"
	ClientLost      ClientStatus = "Lost"
	ClientHighValue ClientStatus = "High Value"
)

// ClientStatuses lists every status in display order.
var ClientStatuses = []ClientStatus{ClientActive, ClientLost, ClientHighValue}

// ClientColumns is the CSV schema for clients.
var ClientColumns = []string{"id", "name", "email", "phone", "status", "value"}

// Client is a customer record.
type Client struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Phone  string       `json:"phone"`
	Status ClientStatus `json:"status"`
	Value  Amount       `json:"value"`
}

// Clients is the client collection.
type Clients struct {
	col    *typed.Collection[[]Client]
	ids    IDGenerator
	logger *slog.Logger
}

// KeyClients is the storage key of the client collection.
const KeyClients = "clients"

func newClients(store core.Storage, ids IDGenerator, logger *slog.Logger) *Clients {
	return &Clients{
		col:    typed.NewCollection(store, KeyClients, seedClients, logger),
		ids:    ids,
		logger: logger,
	}
}

// List returns every client in stored order.
func (c *Clients) List(ctx context.Context) ([]Client, error) {
	return c.col.Load(ctx)
}

// Get returns the client with the given id.
func (c *Clients) Get(ctx context.Context, id string) (Client, error) {
	all, err := c.col.Load(ctx)
	if err != nil {
		return Client{}, err
	}
	i := slices.IndexFunc(all, func(cl Client) bool { return cl.ID == id })
	if i < 0 {
		return Client{}, fmt.Errorf("client %s: %w", id, core.ErrNotFound)
	}
	return all[i], nil
}

// Add stores a new client with a generated id. Name and email are required.
func (c *Clients) Add(ctx context.Context, in Client) (Client, error) {
	in = c.normalize(in)
	if err := validateClient(in); err != nil {
		return Client{}, err
	}
	in.ID = c.ids.NewID()

	_, err := c.col.Update(ctx, func(all []Client) ([]Client, error) {
		return append(all, in), nil
	})
	if err != nil {
		return Client{}, err
	}
	return in, nil
}

// Edit replaces the client that has the same id as in. Only the name is
// required, matching what an import guarantees.
func (c *Clients) Edit(ctx context.Context, in Client) (Client, error) {
	in = c.normalize(in)
	if err := requireName("client", in.Name); err != nil {
		return Client{}, err
	}

	_, err := c.col.Update(ctx, func(all []Client) ([]Client, error) {
		i := slices.IndexFunc(all, func(cl Client) bool { return cl.ID == in.ID })
		if i < 0 {
			return nil, fmt.Errorf("client %s: %w", in.ID, core.ErrNotFound)
		}
		all[i] = in
		return all, nil
	})
	if err != nil {
		return Client{}, err
	}
	return in, nil
}

// Delete removes the client. Deals, tasks and notes that reference it are kept.
func (c *Clients) Delete(ctx context.Context, id string) error {
	_, err := c.col.Update(ctx, func(all []Client) ([]Client, error) {
		i := slices.IndexFunc(all, func(cl Client) bool { return cl.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("client %s: %w", id, core.ErrNotFound)
		}
		return slices.Delete(all, i, i+1), nil
	})
	return err
}

func (c *Clients) normalize(in Client) Client {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Status = c.status(string(in.Status))
	if in.Value.IsNegative() {
		in.Value = Amount{}
	}
	return in
}

func (c *Clients) status(v string) ClientStatus {
	s, ok := merge.Enum(strings.TrimSpace(v), string(ClientActive), enumNames(ClientStatuses)...)
	if !ok {
		c.logger.Warn("unknown client status, using default", "status", v, "default", ClientActive)
	}
	return ClientStatus(s)
}

func (c *Clients) merger() merge.Merger[Client] {
	return merge.Merger[Client]{
		Required: "name",
		Normalize: func(r csvcodec.Row) Client {
			return c.normalize(Client{
				ID:     r["id"],
				Name:   r["name"],
				Email:  r["email"],
				Phone:  r["phone"],
				Status: ClientStatus(r["status"]),
				Value:  coerceAmount(r["value"]),
			})
		},
		ID:     func(cl Client) string { return cl.ID },
		SetID:  func(cl Client, id string) Client { cl.ID = id; return cl },
		NewID:  c.ids.NewID,
		Logger: c.logger,
	}
}

func validateClient(cl Client) error {
	var missing []string
	if cl.Name == "" {
		missing = append(missing, "name")
	}
	if cl.Email == "" {
		missing = append(missing, "email")
	}
	return requireFields("client", missing)
}

func requireName(entity, name string) error {
	if name == "" {
		return requireFields(entity, []string{"name"})
	}
	return nil
}

func requireFields(entity string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s requires %s: %w", entity, strings.Join(missing, ", "), core.ErrValidation)
}

func enumNames[E ~string](values []E) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
