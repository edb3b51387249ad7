package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevorjharder/Coastal-Waves/internal/config"
	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

func newTestEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		cfg: &config.Config{
			DBPath:      filepath.Join(t.TempDir(), "inventory.db"),
			ImportSheet: "Inventory",
			Currency:    "USD",
		},
		logger: slog.New(slog.DiscardHandler),
	}
}

// execute runs cmd with args the way the commander would.
func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$100.00", formatMoney(decimal.RequireFromString("100"), "USD"))
	assert.Equal(t, "$1,234.57", formatMoney(decimal.RequireFromString("1234.565"), "USD"))
	assert.Equal(t, "$0.00", formatMoney(decimal.Zero, "USD"))
	assert.Equal(t, "12.50 XXX1", formatMoney(decimal.RequireFromString("12.5"), "XXX1"))
}

func TestSerialCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := &serialCmd{env: newTestEnv(t), out: &out}

	require.Equal(t, subcommands.ExitSuccess, execute(t, cmd, "encode", "seascape", "m", "gallery1", "7"))
	assert.Equal(t, "PTG-SEASCAPE-M-GALLERY1-0007\n", out.String())

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, cmd, "decode", "ptg-a-b-c-0042"))
	assert.Contains(t, out.String(), "PTG-A-B-C-0042")
	assert.Contains(t, out.String(), "sequence=42")

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, cmd, "-stretch", "variant", "Canvas", "24x36"))
	assert.Equal(t, "CANV24X3SN\n", out.String())

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, execute(t, cmd, "next", "a", "b", "c"))
	assert.Equal(t, "PTG-A-B-C-0001\n", out.String())

	assert.Equal(t, subcommands.ExitFailure, execute(t, cmd, "decode", "PTG-A-B-C-1"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, cmd, "encode", "A", "B", "C", "10000"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, cmd, "encode", "A"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, cmd))
}

func TestImportThenReport(t *testing.T) {
	e := newTestEnv(t)
	sheetPath := filepath.Join(t.TempDir(), "inventory.csv")
	content := "Serial,Description,Location,Stocked,Sold,Quantity\n" +
		"PTG-SEASCAPE-M-H1-0001,Seascape,Studio,5,1,4\n" +
		"PTG-SEASCAPE-M-H1-0002,Seascape,Studio,5,2,2\n"
	require.NoError(t, os.WriteFile(sheetPath, []byte(content), 0o600))

	var out bytes.Buffer
	imp := &importCmd{env: e, out: &out}

	require.Equal(t, subcommands.ExitSuccess, execute(t, imp, "-dry-run", "-json", sheetPath))
	var dry service.Report
	require.NoError(t, jsonDecode(out.Bytes(), &dry))
	assert.True(t, dry.DryRun)
	assert.Equal(t, service.Totals{Processed: 2, Applied: 1, Skipped: 1, Created: 1}, dry.Totals)

	out.Reset()
	imp = &importCmd{env: e, out: &out}
	require.Equal(t, subcommands.ExitSuccess, execute(t, imp, sheetPath))
	assert.Contains(t, out.String(), "commit: 2 processed, 1 applied")
	assert.Contains(t, out.String(), service.ReasonQuantityMismatch)
	assert.Contains(t, out.String(), "batch ")

	out.Reset()
	rep := &reportCmd{env: e, out: &out}
	require.Equal(t, subcommands.ExitSuccess, execute(t, rep, "stock"))
	assert.Contains(t, out.String(), "H1")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "4"), "total on hand")

	out.Reset()
	rep = &reportCmd{env: e, out: &out}
	require.Equal(t, subcommands.ExitSuccess, execute(t, rep, "sales"))
	assert.Contains(t, out.String(), "$0.00", "imported sales carry no price")

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{env: e, out: &out}, "weekly"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{env: e, out: &out}, "-from", "june", "sales"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &importCmd{env: e, out: &out}, "inventory.txt"))
}
