package furrow_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/furrow"
	"github.com/aretw0/furrow/pkg/crm"
)

// Example_basic demonstrates how to open a workspace, add a client and read it back.
func Example_basic() {
	// Create a temporary directory for the example
	tmpDir, err := os.MkdirTemp("", "furrow-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	ws, err := furrow.Open(ctx, tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	// 1. Add a client
	client, err := ws.Clients.Add(ctx, crm.Client{Name: "Acme", Email: "ops@acme.test"})
	if err != nil {
		log.Fatal(err)
	}

	// 2. Read it back
	got, err := ws.Clients.Get(ctx, client.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found client: %s (%s)\n", got.Name, got.Status)
	// Output:
	// Found client: Acme (Active)
}

// Example_pipeline demonstrates the kanban view of deals.
func Example_pipeline() {
	ctx := context.Background()
	ws, err := furrow.Open(ctx, "", furrow.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := ws.Deals.Move(ctx, "1", crm.StageWon, 0); err != nil {
		log.Fatal(err)
	}

	columns, err := ws.Deals.ByStage(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, col := range columns {
		fmt.Printf("%s: %d deal(s), %s\n", col.Stage, len(col.Deals), col.Total)
	}
	// Output:
	// Leads: 0 deal(s), 0
	// Negotiation: 1 deal(s), 12000
	// Won: 2 deal(s), 13000
	// Lost: 1 deal(s), 3000
}

// Example_report demonstrates the dashboard figures over the seed data.
func Example_report() {
	ctx := context.Background()
	ws, err := furrow.Open(ctx, "", furrow.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	r, err := ws.Report(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("conversion %.0f%%, won %s, pipeline %s\n", r.ConversionRate*100, r.WonRevenue, r.PipelineValue)
	// Output:
	// conversion 50%, won 8000, pipeline 17000
}
