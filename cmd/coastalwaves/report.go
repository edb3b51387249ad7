package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

type reportCmd struct {
	env  *env
	out  io.Writer
	from string
	to   string
	json bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print stock, sales or home summary reports" }
func (*reportCmd) Usage() string {
	return `coastalwaves report [-from <date>] [-to <date>] [-json] [stock|sales|home]

  stock  on-hand quantity per location (the default)
  sales  units sold and revenue per location
  home   totals over the home locations

  -from is inclusive and -to exclusive. Dates are YYYY-MM-DD in UTC.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Start of the sales window (inclusive).")
	f.StringVar(&c.to, "to", "", "End of the sales window (exclusive).")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON.")
}

func parseWindow(from, to string) (service.Window, error) {
	var w service.Window
	var err error
	if from != "" {
		if w.From, err = time.Parse(time.DateOnly, from); err != nil {
			return w, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if to != "" {
		if w.To, err = time.Parse(time.DateOnly, to); err != nil {
			return w, fmt.Errorf("invalid -to: %w", err)
		}
	}
	return w, nil
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind := "stock"
	switch f.NArg() {
	case 0:
	case 1:
		kind = f.Arg(0)
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	if kind != "stock" && kind != "sales" && kind != "home" {
		fmt.Fprintf(os.Stderr, "unknown report %q\n", kind)
		return subcommands.ExitUsageError
	}

	window, err := parseWindow(c.from, c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	svc, closeDB, err := c.env.openService()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	if err := c.print(ctx, svc, kind, window); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) print(ctx context.Context, svc *service.InventoryService, kind string, window service.Window) error {
	currency := c.env.cfg.Currency
	switch kind {
	case "sales":
		sales, err := svc.SalesReport(ctx, window)
		if err != nil {
			return err
		}
		if c.json {
			return writeJSON(c.out, sales)
		}
		return renderSales(c.out, sales, currency)
	case "home":
		summary, err := svc.HomeSummary(ctx, window)
		if err != nil {
			return err
		}
		if c.json {
			return writeJSON(c.out, summary)
		}
		return renderHome(c.out, summary, currency)
	default:
		stock, err := svc.StockReport(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return writeJSON(c.out, stock)
		}
		return renderStock(c.out, stock)
	}
}
