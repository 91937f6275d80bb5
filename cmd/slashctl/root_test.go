package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/internal/storage"
)

func run(ctx context.Context, root *cobra.Command, args ...string) error {
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("OWNER_ID", "1")
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "datastore.json"))
}

func TestDump(t *testing.T) {
	setEnv(t)
	var out bytes.Buffer
	root := newRootCmd(log.New(io.Discard))
	root.SetOut(&out)

	require.NoError(t, run(context.Background(), root, "dump"))

	var descs []struct {
		Name              string `json:"name"`
		DefaultPermission bool   `json:"default_permission"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &descs))
	byName := map[string]bool{}
	for _, d := range descs {
		byName[d.Name] = d.DefaultPermission
	}
	assert.Contains(t, byName, "roll")
	assert.Contains(t, byName, "tag")
	assert.False(t, byName["admin"])
}

func TestDumpNeedsToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	root := newRootCmd(log.New(io.Discard))
	root.SetOut(io.Discard)
	assert.Error(t, run(context.Background(), root, "dump"))
}

func TestWriteHistory(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeHistory(&out, nil, "abc"))
	assert.Equal(t, "no publishes recorded\n", out.String())

	out.Reset()
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	records := []storage.SyncRecord{
		{Endpoint: "global", Count: 3, Hash: "0123456789abcdef", At: at},
		{Endpoint: "guilds/42", Count: 4, Hash: "fedcba9876543210", At: at},
	}
	require.NoError(t, writeHistory(&out, records, "0123456789abcdef"))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "guilds/42")
	assert.NotContains(t, string(lines[0]), "(current)")
	assert.Contains(t, string(lines[1]), "2024-03-01 12:30:00")
	assert.Contains(t, string(lines[1]), "0123456789ab (current)")
}

func TestReportDiagnostics(t *testing.T) {
	logger := log.New(io.Discard)
	assert.NoError(t, reportDiagnostics(logger, nil))

	diags := &slash.Diagnostics{}
	diags.Warnf("roll", "fallback description")
	assert.NoError(t, reportDiagnostics(logger, diags))

	diags.Errorf("tag", "too many children")
	assert.ErrorIs(t, reportDiagnostics(logger, diags), errStructural)
}

func TestEndpointOf(t *testing.T) {
	assert.Equal(t, slash.Global, endpointOf(""))
	assert.Equal(t, slash.Guild("42"), endpointOf("42"))
}
