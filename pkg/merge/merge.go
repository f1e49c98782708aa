// Package merge appends freshly imported CSV rows to an existing collection.
//
// Imports never update existing records: every accepted row becomes a new
// record, so importing the same file twice yields duplicates. What Append
// guarantees is that the output keeps every existing record and that every
// id in it is unique.
package merge

import (
	"log/slog"
	"strings"

	"github.com/aretw0/furrow/pkg/csvcodec"
)

// Result summarizes one Append call.
type Result struct {
	Added      int `json:"added"`
	Skipped    int `json:"skipped"`
	Reassigned int `json:"reassigned"`
}

// Merger describes how rows become records of type T.
type Merger[T any] struct {
	// Required names the column that must be non-blank for a row to be kept.
	Required string
	// Normalize builds a record from a row whose values are already trimmed.
	// It applies defaults and coerces types. It must not fail.
	Normalize func(csvcodec.Row) T
	// ID and SetID access the record identifier.
	ID    func(T) string
	SetID func(T, string) T
	// NewID generates a fresh identifier.
	NewID func() string

	Logger *slog.Logger
}

// Append returns existing followed by one record per accepted row.
// The existing slice is not modified.
//
// A row keeps its own id unless it is empty or already taken by an existing
// record or an earlier row, in which case a new one is generated.
func (m Merger[T]) Append(existing []T, rows []csvcodec.Row) ([]T, Result) {
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var res Result
	out := make([]T, len(existing), len(existing)+len(rows))
	copy(out, existing)

	taken := make(map[string]struct{}, len(existing)+len(rows))
	for _, rec := range existing {
		taken[m.ID(rec)] = struct{}{}
	}

	for _, row := range rows {
		row = Trim(row)
		if row[m.Required] == "" {
			res.Skipped++
			continue
		}

		rec := m.Normalize(row)
		id := m.ID(rec)
		if _, dup := taken[id]; id == "" || dup {
			fresh := m.freshID(taken)
			if id != "" {
				logger.Debug("reassigned colliding id", "id", id, "new_id", fresh)
				res.Reassigned++
			}
			id = fresh
			rec = m.SetID(rec, id)
		}
		taken[id] = struct{}{}

		out = append(out, rec)
		res.Added++
	}
	return out, res
}

func (m Merger[T]) freshID(taken map[string]struct{}) string {
	for {
		id := m.NewID()
		if _, dup := taken[id]; !dup && id != "" {
			return id
		}
	}
}

// Trim returns a copy of row with surrounding whitespace removed from every
// value.
func Trim(row csvcodec.Row) csvcodec.Row {
	out := make(csvcodec.Row, len(row))
	for k, v := range row {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Enum matches v case-insensitively against allowed and returns the
// canonical spelling. Blank input yields def with ok true; unknown input
// yields def with ok false.
func Enum(v, def string, allowed ...string) (string, bool) {
	if v == "" {
		return def, true
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a, true
		}
	}
	return def, false
}
