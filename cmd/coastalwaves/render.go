package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/trevorjharder/Coastal-Waves/internal/service"
)

// formatMoney renders amount in the given ISO 4217 currency, rounded to the
// currency's minor unit.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderImport(w io.Writer, report *service.Report) error {
	mode := "commit"
	if report.DryRun {
		mode = "dry run"
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ROW\tSERIAL\tOUTCOME\tDETAIL")
	for _, r := range report.Rows {
		detail := ""
		switch {
		case r.Error != nil:
			detail = r.Error.Reason
		case r.Delta != nil:
			detail = fmt.Sprintf("stocked %+d, sold %+d", r.Delta.Stocked, r.Delta.Sold)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Row, r.Serial, r.Outcome, detail)
		for _, warn := range r.Warnings {
			fmt.Fprintf(tw, "\t\twarning\t%s %s %s: kept %q, ignored %q\n", warn.Entity, warn.Key, warn.Field, warn.Stored, warn.Supplied)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := report.Totals
	_, err := fmt.Fprintf(w, "\n%s: %d processed, %d applied (%d created, %d updated, %d unchanged), %d skipped\n",
		mode, t.Processed, t.Applied, t.Created, t.Updated, t.Unchanged, t.Skipped)
	if err == nil && report.BatchID != "" {
		_, err = fmt.Fprintf(w, "batch %s\n", report.BatchID)
	}
	return err
}

func renderStock(w io.Writer, stock []service.LocationStock) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "LOCATION\tNAME\tHOME\tON HAND")
	total := 0
	for _, s := range stock {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Code, s.Name, yesNo(s.IsHome), s.OnHand)
		total += s.OnHand
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\n", total)
	return tw.Flush()
}

func renderSales(w io.Writer, sales []service.LocationSales, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "LOCATION\tNAME\tHOME\tSOLD\tREVENUE")
	sold, revenue := 0, decimal.Zero
	for _, s := range sales {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.Code, s.Name, yesNo(s.IsHome), s.Sold, formatMoney(s.Revenue, currency))
		sold += s.Sold
		revenue = revenue.Add(s.Revenue)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t%s\n", sold, formatMoney(revenue, currency))
	return tw.Flush()
}

func renderHome(w io.Writer, h *service.HomeSummary, currency string) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "home locations\t%d\n", h.Locations)
	fmt.Fprintf(tw, "on hand\t%d\n", h.OnHand)
	fmt.Fprintf(tw, "sold\t%d\n", h.Sold)
	fmt.Fprintf(tw, "revenue\t%s\n", formatMoney(h.Revenue, currency))
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
