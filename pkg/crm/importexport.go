package crm

import (
	"context"
	"fmt"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/csvcodec"
	"github.com/aretw0/furrow/pkg/merge"
	"github.com/aretw0/furrow/pkg/typed"
)

// Default export file names.
const (
	ClientsFile = "clients.csv"
	DealsFile   = "deals.csv"
	TasksFile   = "tasks.csv"
)

// ImportResult summarizes an import.
type ImportResult = merge.Result

// ExportClients writes all clients to path (clients.csv when empty).
func (w *Workspace) ExportClients(ctx context.Context, path string) error {
	clients, err := w.Clients.List(ctx)
	if err != nil {
		return err
	}
	return export(w.codec, clients, ClientColumns, orDefault(path, ClientsFile))
}

// ExportDeals writes all deals to path (deals.csv when empty).
func (w *Workspace) ExportDeals(ctx context.Context, path string) error {
	deals, err := w.Deals.List(ctx)
	if err != nil {
		return err
	}
	return export(w.codec, deals, DealColumns, orDefault(path, DealsFile))
}

// ExportTasks writes all tasks to path (tasks.csv when empty).
func (w *Workspace) ExportTasks(ctx context.Context, path string) error {
	tasks, err := w.Tasks.List(ctx)
	if err != nil {
		return err
	}
	return export(w.codec, tasks, TaskColumns, orDefault(path, TasksFile))
}

// ImportClients appends the clients in the CSV file at path and returns the
// merged collection. An empty path is a no-op.
func (w *Workspace) ImportClients(ctx context.Context, path string) ([]Client, ImportResult, error) {
	return importInto(ctx, w, path, w.Clients.col, func() (merge.Merger[Client], error) {
		return w.Clients.merger(), nil
	})
}

// ImportDeals appends the deals in the CSV file at path and returns the
// merged collection. Client names are resolved against the current clients;
// unknown client ids leave the name empty.
func (w *Workspace) ImportDeals(ctx context.Context, path string) ([]Deal, ImportResult, error) {
	return importInto(ctx, w, path, w.Deals.col, func() (merge.Merger[Deal], error) {
		names, err := w.Deals.clientNames(ctx)
		if err != nil {
			return merge.Merger[Deal]{}, err
		}
		return w.Deals.merger(names), nil
	})
}

// ImportTasks appends the tasks in the CSV file at path and returns the
// merged collection.
func (w *Workspace) ImportTasks(ctx context.Context, path string) ([]Task, ImportResult, error) {
	return importInto(ctx, w, path, w.Tasks.col, func() (merge.Merger[Task], error) {
		return w.Tasks.merger(), nil
	})
}

// importInto appends the rows of path to col while holding the import slot.
// Nothing is mutated until the file has been read and parsed.
func importInto[T any](ctx context.Context, w *Workspace, path string, col *typed.Collection[[]T], merger func() (merge.Merger[T], error)) ([]T, ImportResult, error) {
	if !w.importing.TryAcquire(1) {
		return nil, ImportResult{}, core.ErrImportInProgress
	}
	defer w.importing.Release(1)
	w.inFlight.Store(true)
	defer w.inFlight.Store(false)

	if path == "" {
		return nil, ImportResult{}, nil
	}
	rows, err := w.codec.ImportFile(ctx, path)
	if err != nil {
		return nil, ImportResult{}, fmt.Errorf("import %s: %w", col.Key(), err)
	}

	m, err := merger()
	if err != nil {
		return nil, ImportResult{}, fmt.Errorf("import %s: %w", col.Key(), err)
	}

	var res ImportResult
	merged, err := col.Update(ctx, func(existing []T) ([]T, error) {
		var out []T
		out, res = m.Append(existing, rows)
		return out, nil
	})
	if err != nil {
		return nil, ImportResult{}, fmt.Errorf("import %s: %w", col.Key(), err)
	}

	w.logger.Info("imported csv", "key", col.Key(), "path", path,
		"added", res.Added, "skipped", res.Skipped, "reassigned", res.Reassigned)
	return merged, res, nil
}

func export[T any](codec *csvcodec.Codec, records []T, columns []string, path string) error {
	table, err := csvcodec.Marshal(records, columns...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return codec.ExportFile(path, table)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
