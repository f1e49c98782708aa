package crm

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

// topClientsLimit caps Report.TopClients.
const topClientsLimit = 5

// Report aggregates the dashboard figures.
type Report struct {
	TotalClients   int           `json:"totalClients"`
	TotalDeals     int           `json:"totalDeals"`
	DealsByStage   map[Stage]int `json:"dealsByStage"`
	Won            int           `json:"won"`
	Lost           int           `json:"lost"`
	ConversionRate float64       `json:"conversionRate"`
	WonRevenue     Amount        `json:"wonRevenue"`
	PipelineValue  Amount        `json:"pipelineValue"`
	PendingTasks   int           `json:"pendingTasks"`
	CompletedTasks int           `json:"completedTasks"`
	TopClients     []ClientTotal `json:"topClients"`
}

// ClientTotal ranks a client by value.
type ClientTotal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Total Amount `json:"total"`
}

// Report computes the dashboard figures from the current collections.
func (w *Workspace) Report(ctx context.Context) (Report, error) {
	clients, err := w.Clients.List(ctx)
	if err != nil {
		return Report{}, err
	}
	deals, err := w.Deals.List(ctx)
	if err != nil {
		return Report{}, err
	}
	tasks, err := w.Tasks.List(ctx)
	if err != nil {
		return Report{}, err
	}
	return buildReport(clients, deals, tasks), nil
}

func buildReport(clients []Client, deals []Deal, tasks []Task) Report {
	r := Report{
		TotalClients: len(clients),
		TotalDeals:   len(deals),
		DealsByStage: make(map[Stage]int, len(Stages)),
		TopClients:   []ClientTotal{},
	}
	for _, s := range Stages {
		r.DealsByStage[s] = 0
	}

	wonByClient := make(map[string]Amount)
	for _, d := range deals {
		r.DealsByStage[d.Stage]++
		switch d.Stage {
		case StageWon:
			r.WonRevenue = r.WonRevenue.Plus(d.Value)
			key := cmp.Or(d.ClientID, d.Client)
			wonByClient[key] = wonByClient[key].Plus(d.Value)
		case StageLeads, StageNegotiation:
			r.PipelineValue = r.PipelineValue.Plus(d.Value)
		}
	}
	r.Won = r.DealsByStage[StageWon]
	r.Lost = r.DealsByStage[StageLost]
	if closed := r.Won + r.Lost; closed > 0 {
		r.ConversionRate = decimal.NewFromInt(int64(r.Won)).
			Div(decimal.NewFromInt(int64(closed))).
			Round(4).
			InexactFloat64()
	}

	for _, t := range tasks {
		switch t.Status {
		case TaskCompleted:
			r.CompletedTasks++
		default:
			r.PendingTasks++
		}
	}

	// A client's own value wins; otherwise its won deals count.
	for _, c := range clients {
		total := c.Value
		if total.IsZero() {
			total = wonByClient[c.ID]
		}
		r.TopClients = append(r.TopClients, ClientTotal{ID: c.ID, Name: c.Name, Total: total})
	}
	slices.SortStableFunc(r.TopClients, func(a, b ClientTotal) int {
		return b.Total.Cmp(a.Total.Decimal)
	})
	if len(r.TopClients) > topClientsLimit {
		r.TopClients = r.TopClients[:topClientsLimit]
	}
	return r
}
