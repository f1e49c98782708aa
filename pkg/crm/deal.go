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

// Stage is a pipeline column.
type Stage string

const (
	StageLeads       Stage = "Leads"
	StageNegotiation Stage = "Negotiation"
	StageWon         Stage = "Won"
	StageLost        Stage = "Lost"
)

// Stages lists the pipeline columns in board order.
var Stages = []Stage{StageLeads, StageNegotiation, StageWon, StageLost}

// DealColumns is the CSV schema for deals.
var DealColumns = []string{"id", "name", "clientId", "client", "stage", "value"}

// KeyDeals is the storage key of the deal collection.
const KeyDeals = "deals"

// Deal is a sales opportunity. Client caches the client name at the time the
// deal was last written and is not kept in sync afterwards.
type Deal struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	Client   string `json:"client"`
	Stage    Stage  `json:"stage"`
	Value    Amount `json:"value"`
}

// Column is one pipeline stage with its deals in board order.
type Column struct {
	Stage Stage  `json:"stage"`
	Deals []Deal `json:"deals"`
	Total Amount `json:"total"`
}

// Deals is the deal collection.
type Deals struct {
	col     *typed.Collection[[]Deal]
	clients *Clients
	ids     IDGenerator
	logger  *slog.Logger
}

func newDeals(store core.Storage, clients *Clients, ids IDGenerator, logger *slog.Logger) *Deals {
	return &Deals{
		col:     typed.NewCollection(store, KeyDeals, seedDeals, logger),
		clients: clients,
		ids:     ids,
		logger:  logger,
	}
}

// List returns every deal in stored order.
func (d *Deals) List(ctx context.Context) ([]Deal, error) {
	return d.col.Load(ctx)
}

// Get returns the deal with the given id.
func (d *Deals) Get(ctx context.Context, id string) (Deal, error) {
	all, err := d.col.Load(ctx)
	if err != nil {
		return Deal{}, err
	}
	i := indexDeal(all, id)
	if i < 0 {
		return Deal{}, fmt.Errorf("deal %s: %w", id, core.ErrNotFound)
	}
	return all[i], nil
}

// Add stores a new deal. Name, client id and a non-zero value are required.
func (d *Deals) Add(ctx context.Context, in Deal) (Deal, error) {
	in = d.normalize(in)
	if err := validateDeal(in); err != nil {
		return Deal{}, err
	}
	in, err := d.resolveClient(ctx, in)
	if err != nil {
		return Deal{}, err
	}
	in.ID = d.ids.NewID()

	if _, err := d.col.Update(ctx, func(all []Deal) ([]Deal, error) {
		return append(all, in), nil
	}); err != nil {
		return Deal{}, err
	}
	return in, nil
}

// Edit replaces the deal that has the same id as in, refreshing the cached
// client name. Only the name is required, so that imported deals without a
// client or value stay editable.
func (d *Deals) Edit(ctx context.Context, in Deal) (Deal, error) {
	in = d.normalize(in)
	if err := requireName("deal", in.Name); err != nil {
		return Deal{}, err
	}
	in, err := d.resolveClient(ctx, in)
	if err != nil {
		return Deal{}, err
	}

	if _, err := d.col.Update(ctx, func(all []Deal) ([]Deal, error) {
		i := indexDeal(all, in.ID)
		if i < 0 {
			return nil, fmt.Errorf("deal %s: %w", in.ID, core.ErrNotFound)
		}
		all[i] = in
		return all, nil
	}); err != nil {
		return Deal{}, err
	}
	return in, nil
}

// Delete removes the deal.
func (d *Deals) Delete(ctx context.Context, id string) error {
	_, err := d.col.Update(ctx, func(all []Deal) ([]Deal, error) {
		i := indexDeal(all, id)
		if i < 0 {
			return nil, fmt.Errorf("deal %s: %w", id, core.ErrNotFound)
		}
		return slices.Delete(all, i, i+1), nil
	})
	return err
}

// Move puts the deal into stage at position index among that stage's deals.
// An index past the end appends to the stage; a negative index means 0.
func (d *Deals) Move(ctx context.Context, id string, stage Stage, index int) (Deal, error) {
	target, ok := merge.Enum(strings.TrimSpace(string(stage)), "", enumNames(Stages)...)
	if !ok || target == "" {
		return Deal{}, fmt.Errorf("unknown stage %q: %w", stage, core.ErrValidation)
	}

	var moved Deal
	_, err := d.col.Update(ctx, func(all []Deal) ([]Deal, error) {
		i := indexDeal(all, id)
		if i < 0 {
			return nil, fmt.Errorf("deal %s: %w", id, core.ErrNotFound)
		}
		moved = all[i]
		moved.Stage = Stage(target)
		rest := slices.Delete(all, i, i+1)
		return slices.Insert(rest, insertPosition(rest, moved.Stage, index), moved), nil
	})
	if err != nil {
		return Deal{}, err
	}
	d.logger.Debug("moved deal", "id", id, "stage", moved.Stage, "index", index)
	return moved, nil
}

// ByStage groups deals into the pipeline columns, preserving stored order
// within each column.
func (d *Deals) ByStage(ctx context.Context) ([]Column, error) {
	all, err := d.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return columns(all), nil
}

func columns(all []Deal) []Column {
	cols := make([]Column, len(Stages))
	for i, s := range Stages {
		cols[i] = Column{Stage: s, Deals: []Deal{}}
	}
	for _, deal := range all {
		i := slices.Index(Stages, deal.Stage)
		if i < 0 {
			continue
		}
		cols[i].Deals = append(cols[i].Deals, deal)
		cols[i].Total = cols[i].Total.Plus(deal.Value)
	}
	return cols
}

// insertPosition maps a position within stage to a position in all.
func insertPosition(all []Deal, stage Stage, index int) int {
	index = max(index, 0)
	seen := 0
	last := -1
	for i, deal := range all {
		if deal.Stage != stage {
			continue
		}
		if seen == index {
			return i
		}
		seen++
		last = i
	}
	if last < 0 {
		return len(all)
	}
	return last + 1
}

func validateDeal(in Deal) error {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.ClientID == "" {
		missing = append(missing, "clientId")
	}
	if in.Value.IsZero() {
		missing = append(missing, "value")
	}
	return requireFields("deal", missing)
}

func (d *Deals) resolveClient(ctx context.Context, in Deal) (Deal, error) {
	names, err := d.clientNames(ctx)
	if err != nil {
		return Deal{}, err
	}
	in.Client = names[in.ClientID]
	return in, nil
}

func (d *Deals) normalize(in Deal) Deal {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.ClientID = strings.TrimSpace(in.ClientID)
	stage, ok := merge.Enum(strings.TrimSpace(string(in.Stage)), string(StageLeads), enumNames(Stages)...)
	if !ok {
		d.logger.Warn("unknown deal stage, using default", "stage", in.Stage, "default", StageLeads)
	}
	in.Stage = Stage(stage)
	return in
}

func (d *Deals) clientNames(ctx context.Context) (map[string]string, error) {
	clients, err := d.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(clients))
	for _, cl := range clients {
		names[cl.ID] = cl.Name
	}
	return names, nil
}

// merger resolves client names against names, a snapshot of the client
// collection taken when the import starts.
func (d *Deals) merger(names map[string]string) merge.Merger[Deal] {
	return merge.Merger[Deal]{
		Required: "name",
		Normalize: func(r csvcodec.Row) Deal {
			deal := d.normalize(Deal{
				ID:       r["id"],
				Name:     r["name"],
				ClientID: r["clientId"],
				Stage:    Stage(r["stage"]),
				Value:    coerceAmount(r["value"]),
			})
			deal.Client = names[deal.ClientID]
			return deal
		},
		ID:     func(deal Deal) string { return deal.ID },
		SetID:  func(deal Deal, id string) Deal { deal.ID = id; return deal },
		NewID:  d.ids.NewID,
		Logger: d.logger,
	}
}

func indexDeal(all []Deal, id string) int {
	return slices.IndexFunc(all, func(deal Deal) bool { return deal.ID == id })
}
