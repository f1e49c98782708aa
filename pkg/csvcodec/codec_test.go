package csvcodec_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/csvcodec"
)

type contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Value int    `json:"value"`
}

func TestMarshal_HeaderFromFirstRecord(t *testing.T) {
	table, err := csvcodec.Marshal([]contact{{Name: "A", Email: "a@x.com", Value: 10}})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "value"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, csvcodec.Row{"name": "A", "email": "a@x.com", "value": "10"}, table.Rows[0])
}

func TestMarshal_FixedSchema(t *testing.T) {
	table, err := csvcodec.Marshal([]contact{{Name: "A"}}, "value", "name", "missing")
	require.NoError(t, err)

	assert.Equal(t, []string{"value", "name", "missing"}, table.Header)
	assert.Equal(t, csvcodec.Row{"value": "0", "name": "A", "missing": ""}, table.Rows[0])
}

func TestMarshal_Empty(t *testing.T) {
	table, err := csvcodec.Marshal[contact](nil, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, table.Header)
	assert.Empty(t, table.Rows)
}

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"bool", true, "true"},
		{"map", map[string]any{"a": "b"}, `{"a":"b"}`},
		{"slice", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, csvcodec.MarshalValue(tt.in))
		})
	}
}

func TestMarshal_LargeNumbersKeepLiteralForm(t *testing.T) {
	table, err := csvcodec.Marshal([]map[string]any{{"value": 12000000}})
	require.NoError(t, err)
	assert.Equal(t, "12000000", table.Rows[0]["value"])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	codec := csvcodec.New(nil)
	table := csvcodec.Table{
		Header: []string{"name", "notes", "value"},
		Rows: []csvcodec.Row{
			{"name": "O'Brien, J", "notes": `said "hi"`, "value": "5000"},
			{"name": "Multi", "notes": "line one\nline two", "value": "1"},
			{"name": "Plain", "notes": "", "value": "0"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, table))

	rows, err := codec.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, rows)
}

func TestEncode_Quoting(t *testing.T) {
	codec := csvcodec.New(nil)
	var buf bytes.Buffer
	err := codec.Encode(&buf, csvcodec.Table{
		Header: []string{"name", "value"},
		Rows:   []csvcodec.Row{{"name": `O'Brien, "J"`, "value": "5000"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,value\n\"O'Brien, \"\"J\"\"\",5000\n", buf.String())
}

func TestDecode_IrregularInput(t *testing.T) {
	codec := csvcodec.New(nil)

	t.Run("empty", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("header only", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader("name,email\n"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("bom and padded header", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader("\ufeff name , email\nA,a@x.com\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, csvcodec.Row{"name": "A", "email": "a@x.com"}, rows[0])
	})

	t.Run("short and long rows", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader("name,email,value\nA\nB,b@x.com,1,extra\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, csvcodec.Row{"name": "A", "email": "", "value": ""}, rows[0])
		assert.Equal(t, csvcodec.Row{"name": "B", "email": "b@x.com", "value": "1"}, rows[1])
	})

	t.Run("blank lines", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader("name\n\nA\n   \nB\n\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "A", rows[0]["name"])
		assert.Equal(t, "B", rows[1]["name"])
	})

	t.Run("crlf line endings", func(t *testing.T) {
		rows, err := codec.Decode(strings.NewReader("name,value\r\nA,1\r\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, csvcodec.Row{"name": "A", "value": "1"}, rows[0])
	})
}

func TestExportImportFile(t *testing.T) {
	codec := csvcodec.New(nil)
	path := filepath.Join(t.TempDir(), "clients.csv")

	table, err := csvcodec.Marshal([]contact{{Name: "O'Brien, J", Value: 5000}}, "name", "value")
	require.NoError(t, err)
	require.NoError(t, codec.ExportFile(path, table))

	rows, err := codec.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "O'Brien, J", rows[0]["name"])
	assert.Equal(t, "5000", rows[0]["value"])
}

func TestImportFile_NoFileSelected(t *testing.T) {
	rows, err := csvcodec.New(nil).ImportFile(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestImportFile_RejectsOtherExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.txt")
	require.NoError(t, os.WriteFile(path, []byte("name\nA\n"), 0644))

	_, err := csvcodec.New(nil).ImportFile(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestImportFile_UppercaseExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLIENTS.CSV")
	require.NoError(t, os.WriteFile(path, []byte("name\nA\n"), 0644))

	rows, err := csvcodec.New(nil).ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestImportFile_Missing(t *testing.T) {
	_, err := csvcodec.New(nil).ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
