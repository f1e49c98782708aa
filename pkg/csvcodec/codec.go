// Package csvcodec maps collections of flat records to CSV text and back.
//
// Encoding follows RFC 4180 quoting: values containing the delimiter, a quote
// or a line break are wrapped in double quotes with inner quotes doubled.
// Decoding is deliberately lenient: it never fails on formatting
// irregularities, only on I/O.
package csvcodec

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/furrow/internal/atomicfile"
	"github.com/aretw0/furrow/pkg/core"
)

// Extension is the only file extension accepted by ImportFile.
const Extension = ".csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one CSV record keyed by column name.
type Row map[string]string

// Table is a header plus rows. Rows are written in header order.
type Table struct {
	Header []string
	Rows   []Row
}

// Codec reads and writes CSV tables.
type Codec struct {
	logger *slog.Logger
}

// New creates a codec. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Codec{logger: logger}
}

// Encode writes t as CSV: the header line, then one line per row.
// Columns missing from a row are written empty.
func (c *Codec) Encode(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, h := range t.Header {
			record[i] = row[h]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile encodes t and writes it to path atomically.
func (c *Codec) ExportFile(path string, t Table) error {
	err := atomicfile.WriteFunc(path, 0644, func(w io.Writer) error {
		return c.Encode(w, t)
	})
	if err != nil {
		return fmt.Errorf("export %s: %w", filepath.Base(path), err)
	}
	c.logger.Info("exported csv", "path", path, "rows", len(t.Rows))
	return nil
}

// Decode parses CSV text into rows keyed by the first record's column names.
//
// Policy for irregular input:
//   - empty input, or a header with no data, yields no rows;
//   - blank records (every field empty or whitespace) are skipped;
//   - short records are padded with empty strings, extra fields are dropped;
//   - records the reader cannot parse are skipped and logged.
func (c *Codec) Decode(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				c.logger.Warn("skipping malformed csv record", "line", parseErr.StartLine, "error", parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if isBlank(record) {
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			for i, h := range record {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}

		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		if len(record) != len(header) {
			c.logger.Debug("csv record width differs from header", "want", len(header), "got", len(record))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportFile reads and decodes the CSV file at path.
// An empty path means "no file selected" and yields no rows and no error.
// Files without the .csv extension are rejected with core.ErrValidation.
func (c *Codec) ImportFile(ctx context.Context, path string) ([]Row, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("%s is not a %s file: %w", filepath.Base(path), Extension, core.ErrValidation)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	rows, err := c.Decode(f)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.logger.Debug("imported csv", "path", path, "rows", len(rows))
	return rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
