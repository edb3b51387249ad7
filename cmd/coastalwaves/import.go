package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/trevorjharder/Coastal-Waves/internal/sheet"
)

type importCmd struct {
	env    *env
	out    io.Writer
	dryRun bool
	sheet  string
	json   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "reconcile the inventory against a spreadsheet" }
func (*importCmd) Usage() string {
	return `coastalwaves import [-dry-run] [-sheet <name>] [-json] <file.xlsx|file.csv>

  Applies every row of the sheet as one batch. Rows that fail validation are
  skipped and reported; the rest are applied. With -dry-run nothing is
  written and the report shows what a commit would do.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Report what would change without writing.")
	f.StringVar(&c.sheet, "sheet", "", "Worksheet to read from an .xlsx file. Overrides IMPORT_SHEET.")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	format, err := sheet.FormatFromName(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer func() { _ = file.Close() }()

	if c.sheet != "" {
		c.env.cfg.ImportSheet = c.sheet
	}
	svc, closeDB, err := c.env.openService()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	report, err := svc.ImportSheet(ctx, file, format, c.dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		err = writeJSON(c.out, report)
	} else {
		err = renderImport(c.out, report)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
