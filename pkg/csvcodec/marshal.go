package csvcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal converts records into a Table. Each record is flattened through its
// JSON encoding, so struct tags decide the column names.
//
// The header is the given fixed schema if any, otherwise the keys of the
// first record in JSON field order.
func Marshal[T any](records []T, header ...string) (Table, error) {
	t := Table{Header: header, Rows: make([]Row, 0, len(records))}

	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return Table{}, fmt.Errorf("record %d: %w", i, err)
		}

		if t.Header == nil {
			keys, err := orderedKeys(data)
			if err != nil {
				return Table{}, fmt.Errorf("record %d: %w", i, err)
			}
			t.Header = keys
		}

		var fields map[string]any
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&fields); err != nil {
			return Table{}, fmt.Errorf("record %d is not a flat object: %w", i, err)
		}

		row := make(Row, len(t.Header))
		for _, h := range t.Header {
			row[h] = MarshalValue(fields[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// MarshalValue renders a decoded JSON value as CSV cell text.
// Numbers keep their literal form (5000, not 5e+03), nil is empty and
// complex types (maps, slices) are written as JSON.
func MarshalValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

// orderedKeys returns the top-level keys of a JSON object in document order.
func orderedKeys(data []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var keys []string
	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		keys = append(keys, key)

		// Skip the value, whatever its shape.
		var skip json.RawMessage
		if err := decoder.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
