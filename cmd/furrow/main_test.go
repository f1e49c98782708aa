package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

// resetFlags restores every flag to its default so that runs do not leak
// state into each other through the package-level variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI in-process against the data directory dir and
// returns what it wrote to stdout and stderr.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--data", dir}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return filepath.Join(dir, "data")
}

func TestCLI_ClientLifecycle(t *testing.T) {
	data := workdir(t)

	out, _, err := run(t, data, "client", "add", "--name", "Zed Corp", "--email", "z@zed.test", "--value", "250")
	require.NoError(t, err)
	assert.Contains(t, out, "Client 'Zed Corp' added")

	out, _, err = run(t, data, "client", "list", "--json", "--sort", "name")
	require.NoError(t, err)
	var clients []crm.Client
	require.NoError(t, json.Unmarshal([]byte(out), &clients))
	require.Len(t, clients, 4)
	assert.Equal(t, "Client A", clients[0].Name)
	assert.Equal(t, "Zed Corp", clients[3].Name)

	out, _, err = run(t, data, "client", "list", "--search", "ZED")
	require.NoError(t, err)
	assert.Contains(t, out, "Zed Corp")
	assert.NotContains(t, out, "Client A")

	out, _, err = run(t, data, "client", "edit", "1", "--status", "lost")
	require.NoError(t, err)
	assert.Contains(t, out, "Client '1' updated")

	out, _, err = run(t, data, "client", "show", "1", "--json")
	require.NoError(t, err)
	var details crm.ClientDetails
	require.NoError(t, json.Unmarshal([]byte(out), &details))
	assert.Equal(t, crm.ClientLost, details.Client.Status)
	assert.Equal(t, "a@email.com", details.Client.Email, "unchanged fields are kept")
	assert.Len(t, details.Deals, 1)

	_, _, err = run(t, data, "client", "delete", "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCLI_ValidationIsAWarning(t *testing.T) {
	data := workdir(t)

	_, stderr, err := run(t, data, "client", "add", "--name", "No Email")
	require.NoError(t, err)
	assert.Contains(t, stderr, "client requires email")

	_, err = os.Stat(filepath.Join(data, "clients.json"))
	assert.True(t, os.IsNotExist(err), "nothing is written on validation failure")
}

func TestCLI_DealBoardAndMove(t *testing.T) {
	data := workdir(t)

	_, _, err := run(t, data, "deal", "move", "1", "won", "0")
	require.NoError(t, err)

	out, _, err := run(t, data, "deal", "board", "--json")
	require.NoError(t, err)
	var cols []crm.Column
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	require.Len(t, cols, 4)
	assert.Empty(t, cols[0].Deals)
	require.Len(t, cols[2].Deals, 2)
	assert.Equal(t, "1", cols[2].Deals[0].ID)
}

func TestCLI_ExportImport(t *testing.T) {
	data := workdir(t)
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	out, _, err := run(t, data, "export", "deals", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported deals")

	out, _, err = run(t, data, "import", "deals", csvPath, "--json")
	require.NoError(t, err)
	var res crm.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, crm.ImportResult{Added: 4, Reassigned: 4}, res)

	_, stderr, err := run(t, data, "import", "deals", filepath.Join(t.TempDir(), "deals.txt"))
	require.NoError(t, err, "a non-csv file is a warning")
	assert.Contains(t, stderr, "not a .csv file")
}

func TestCLI_Session(t *testing.T) {
	data := workdir(t)

	_, _, err := run(t, data, "login", "admin", "nope")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, _, err = run(t, data, "login", "admin", "crm123")
	require.NoError(t, err)
	out, _, err := run(t, data, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in")

	_, _, err = run(t, data, "logout")
	require.NoError(t, err)
	out, _, err = run(t, data, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")
}

func TestCLI_Report(t *testing.T) {
	data := workdir(t)

	out, _, err := run(t, data, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "$8,000.00")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "furrow.yaml"), []byte("adapter: sqlite\ndata: crm.db\n"), 0644))

	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"task", "add", "--title", "Call", "--client", "1", "--due", "2025-10-01"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "crm.db"))
	assert.NoError(t, err)
}

func TestCLI_Status(t *testing.T) {
	data := workdir(t)

	out, _, err := run(t, data, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "crm-workspace")
	assert.Contains(t, out, "fs-storage")
	assert.Contains(t, out, "Importing")

	out, _, err = run(t, data, "status", "--json")
	require.NoError(t, err)
	var got struct {
		Component string             `json:"component"`
		Storage   string             `json:"storage"`
		State     crm.WorkspaceState `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fs-storage", got.Storage)
	assert.False(t, got.State.Importing)

	out, _, err = run(t, data, "status", "--diagram")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestStateMetadata(t *testing.T) {
	meta := stateMetadata("memory-storage", struct {
		Keys int `json:"keys"`
	}{Keys: 3})
	assert.Equal(t, map[string]string{"type": "memory-storage", "keys": "3"}, meta)
}

func TestCLI_Version(t *testing.T) {
	out, _, err := run(t, workdir(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "furrow version ")
}

func TestFilterAndSortClients(t *testing.T) {
	clients := []crm.Client{
		{ID: "1", Name: "émile", Email: "e@x", Status: crm.ClientActive, Value: crm.NewAmount(10)},
		{ID: "2", Name: "Bravo", Email: "bravo@x", Status: crm.ClientLost, Value: crm.NewAmount(30)},
		{ID: "3", Name: "alpha", Email: "contact@bravo.test", Status: crm.ClientActive, Value: crm.NewAmount(20)},
	}

	got := filterClients(clients, "bravo", "")
	assert.Len(t, got, 2)
	got = filterClients(clients, "", "active")
	assert.Len(t, got, 2)

	byName := filterClients(clients, "", "")
	require.NoError(t, sortClients(byName, "name"))
	assert.Equal(t, []string{"alpha", "Bravo", "émile"}, []string{byName[0].Name, byName[1].Name, byName[2].Name})

	byValue := filterClients(clients, "", "")
	require.NoError(t, sortClients(byValue, "value"))
	assert.Equal(t, "2", byValue[0].ID)

	assert.ErrorIs(t, sortClients(byValue, "email"), core.ErrValidation)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$12,000.00", formatMoney(crm.NewAmount(12000)))
	assert.Equal(t, "$0.00", formatMoney(crm.Amount{}))
	assert.Equal(t, "$999.50", formatMoney(mustAmount(t, "999.5")))
	assert.Equal(t, "-$1,234.57", formatMoney(mustAmount(t, "-1234.567")))
	assert.Equal(t, "$12,345,678,901,234,567.89", formatMoney(mustAmount(t, "12345678901234567.89")),
		"large amounts keep every digit")
}

func mustAmount(t *testing.T, s string) crm.Amount {
	t.Helper()
	a, err := crm.ParseAmount(s)
	require.NoError(t, err)
	return a
}
