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

// TaskStatus is the completion state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "Pending"
	TaskCompleted TaskStatus = "Completed"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskCompleted}

// TaskColumns is the CSV schema for tasks.
var TaskColumns = []string{"id", "title", "clientId", "dueDate", "status"}

// KeyTasks is the storage key of the task collection.
const KeyTasks = "tasks"

// Task is a to-do item attached to a client.
type Task struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ClientID string     `json:"clientId"`
	DueDate  Date       `json:"dueDate"`
	Status   TaskStatus `json:"status"`
}

// Tasks is the task collection.
type Tasks struct {
	col    *typed.Collection[[]Task]
	ids    IDGenerator
	logger *slog.Logger
}

func newTasks(store core.Storage, ids IDGenerator, logger *slog.Logger) *Tasks {
	return &Tasks{
		col:    typed.NewCollection(store, KeyTasks, seedTasks, logger),
		ids:    ids,
		logger: logger,
	}
}

// List returns every task in stored order.
func (t *Tasks) List(ctx context.Context) ([]Task, error) {
	return t.col.Load(ctx)
}

// Get returns the task with the given id.
func (t *Tasks) Get(ctx context.Context, id string) (Task, error) {
	all, err := t.col.Load(ctx)
	if err != nil {
		return Task{}, err
	}
	i := indexTask(all, id)
	if i < 0 {
		return Task{}, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
	}
	return all[i], nil
}

// ForClient returns the tasks that reference clientID.
func (t *Tasks) ForClient(ctx context.Context, clientID string) ([]Task, error) {
	all, err := t.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Task{}
	for _, task := range all {
		if task.ClientID == clientID {
			out = append(out, task)
		}
	}
	return out, nil
}

// Add stores a new task. Title and client id are required.
func (t *Tasks) Add(ctx context.Context, in Task) (Task, error) {
	in = t.normalize(in)
	if err := validateTask(in); err != nil {
		return Task{}, err
	}
	in.ID = t.ids.NewID()

	if _, err := t.col.Update(ctx, func(all []Task) ([]Task, error) {
		return append(all, in), nil
	}); err != nil {
		return Task{}, err
	}
	return in, nil
}

// Edit replaces the task that has the same id as in. Only the title is
// required, matching what an import guarantees.
func (t *Tasks) Edit(ctx context.Context, in Task) (Task, error) {
	in = t.normalize(in)
	if in.Title == "" {
		return Task{}, requireFields("task", []string{"title"})
	}
	if err := t.replace(ctx, in.ID, func(Task) Task { return in }); err != nil {
		return Task{}, err
	}
	return in, nil
}

// Complete marks the task as completed.
func (t *Tasks) Complete(ctx context.Context, id string) (Task, error) {
	var done Task
	err := t.replace(ctx, id, func(task Task) Task {
		task.Status = TaskCompleted
		done = task
		return task
	})
	if err != nil {
		return Task{}, err
	}
	return done, nil
}

// Delete removes the task.
func (t *Tasks) Delete(ctx context.Context, id string) error {
	_, err := t.col.Update(ctx, func(all []Task) ([]Task, error) {
		i := indexTask(all, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
		}
		return slices.Delete(all, i, i+1), nil
	})
	return err
}

func (t *Tasks) replace(ctx context.Context, id string, fn func(Task) Task) error {
	_, err := t.col.Update(ctx, func(all []Task) ([]Task, error) {
		i := indexTask(all, id)
		if i < 0 {
			return nil, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
		}
		all[i] = fn(all[i])
		return all, nil
	})
	return err
}

func (t *Tasks) normalize(in Task) Task {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.ClientID = strings.TrimSpace(in.ClientID)
	status, ok := merge.Enum(strings.TrimSpace(string(in.Status)), string(TaskPending), enumNames(TaskStatuses)...)
	if !ok {
		t.logger.Warn("unknown task status, using default", "status", in.Status, "default", TaskPending)
	}
	in.Status = TaskStatus(status)
	return in
}

func (t *Tasks) merger() merge.Merger[Task] {
	return merge.Merger[Task]{
		Required: "title",
		Normalize: func(r csvcodec.Row) Task {
			due, err := ParseDate(r["dueDate"])
			if err != nil {
				t.logger.Warn("ignoring invalid due date", "due_date", r["dueDate"], "error", err)
			}
			return t.normalize(Task{
				ID:       r["id"],
				Title:    r["title"],
				ClientID: r["clientId"],
				DueDate:  due,
				Status:   TaskStatus(r["status"]),
			})
		},
		ID:     func(task Task) string { return task.ID },
		SetID:  func(task Task, id string) Task { task.ID = id; return task },
		NewID:  t.ids.NewID,
		Logger: t.logger,
	}
}

func validateTask(task Task) error {
	var missing []string
	if task.Title == "" {
		missing = append(missing, "title")
	}
	if task.ClientID == "" {
		missing = append(missing, "clientId")
	}
	return requireFields("task", missing)
}

func indexTask(all []Task, id string) int {
	return slices.IndexFunc(all, func(task Task) bool { return task.ID == id })
}
