package crm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/crm"
)

func TestAmount_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`5000`, "5000"},
		{`"5000"`, "5000"},
		{`"12.50"`, "12.5"},
		{`""`, "0"},
		{`"abc"`, "0"},
		{`null`, "0"},
		{`true`, "0"},
		{`{"amount":5}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a crm.Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a.String())
		})
	}

	out, err := json.Marshal(struct {
		Value crm.Amount `json:"value"`
	}{crm.NewAmount(5000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":5000}`, string(out))

}

func TestDate_JSON(t *testing.T) {
	var d crm.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-09-10"`), &d))
	assert.Equal(t, "2025-09-10", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-09-10"`, string(out))

	var empty crm.Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(out))

	for _, in := range []string{`"2025-9-1"`, `"2025-09-01T10:00:00Z"`} {
		var loose crm.Date
		require.NoError(t, json.Unmarshal([]byte(in), &loose), in)
		assert.Equal(t, "2025-09-01", loose.String(), in)
	}
	for _, in := range []string{`"10/09/2025"`, `"soon"`, `42`, `null`} {
		var bad crm.Date
		require.NoError(t, json.Unmarshal([]byte(in), &bad), in)
		assert.True(t, bad.IsZero(), in)
	}
}

func TestLegacyStringValuesLoad(t *testing.T) {
	var clients []crm.Client
	raw := `[{"id":"9","name":"Legacy","email":"l@x","phone":"","status":"Active","value":"750"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "750", clients[0].Value.String())
}
