// Package report writes optimization results for humans (aligned text) and
// machines (JSON, MessagePack).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates an output format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", &domain.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q (want table, json or msgpack)", s)}
	}
}

// Write encodes result in the given format.
func Write(w io.Writer, format Format, result *optimization.Result) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatMsgpack:
		return WriteMsgpack(w, result)
	default:
		return &domain.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", format)}
	}
}

// WriteJSON writes result as indented JSON.
func WriteJSON(w io.Writer, result *optimization.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteMsgpack writes result as MessagePack.
func WriteMsgpack(w io.Writer, result *optimization.Result) error {
	if err := msgpack.NewEncoder(w).Encode(result); err != nil {
		return fmt.Errorf("failed to encode msgpack: %w", err)
	}
	return nil
}

// WriteTable writes a human-readable summary: run header, data previews,
// the named portfolios with their weights and the frontier envelope.
func WriteTable(w io.Writer, result *optimization.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s  seed %d  method %s  trials %d  elapsed %s\n\n",
		result.RunID, result.Seed, result.Method, result.Trials.Len(), result.Elapsed.Round(time.Millisecond))

	writePreview(tw, fmt.Sprintf("Prices (first %d rows)", len(result.Prices.Rows)), result.Assets, result.Prices, "%.4f")
	writePreview(tw, fmt.Sprintf("Returns (first %d rows)", len(result.Returns.Rows)), result.Assets, result.Returns, "%+.4f")

	fmt.Fprintf(tw, "Portfolio\tRisk\tReturn\tSharpe")
	for _, a := range result.Assets {
		fmt.Fprintf(tw, "\t%s", a)
	}
	fmt.Fprintln(tw)

	rows := []struct {
		name    string
		metrics domain.PortfolioMetrics
		weights map[string]float64
	}{
		{"Lowest risk", result.LowestRisk.Metrics, result.LowestRisk.Weights},
		{"Best Sharpe", result.BestSharpe.Metrics, result.BestSharpe.Weights},
		{"Highest return", result.HighestReturn.Metrics, result.HighestReturn.Weights},
		{"Recommended (" + result.Recommended.Title + ")", result.Recommended.Metrics, result.Recommended.Weights},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", row.name, percent(row.metrics.Risk), percent(row.metrics.Return), sharpe(row.metrics))
		for _, a := range result.Assets {
			fmt.Fprintf(tw, "\t%s", percent(row.weights[a]))
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintln(tw)

	if !result.Selection.SharpeDefined {
		fmt.Fprintln(tw, "Note: every sampled portfolio is riskless; Sharpe ratio is undefined and Best Sharpe falls back to Lowest risk.")
	}
	fmt.Fprintf(tw, "%s: %s\n\n", result.Recommended.Title, result.Recommended.Description)

	fmt.Fprintf(tw, "Efficient frontier (%d points)\n", len(result.Frontier))
	fmt.Fprintln(tw, "Trial\tRisk\tReturn")
	for _, p := range result.Frontier {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.Index, percent(p.Risk), percent(p.Return))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func writePreview(tw *tabwriter.Writer, title string, assets []string, p optimization.Preview, cell string) {
	fmt.Fprintln(tw, title)
	fmt.Fprintf(tw, "Date")
	for _, a := range assets {
		fmt.Fprintf(tw, "\t%s", a)
	}
	fmt.Fprintln(tw)
	for t, row := range p.Rows {
		fmt.Fprint(tw, p.Dates[t].Format("2006-01-02"))
		for _, v := range row {
			fmt.Fprintf(tw, "\t"+cell, v)
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintln(tw)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func sharpe(m domain.PortfolioMetrics) string {
	s, err := m.SharpeRatio()
	if err != nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", s)
}
