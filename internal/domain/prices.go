package domain

import (
	"fmt"
	"math"
	"time"
)

// PriceTable is an ordered, immutable history of asset prices.
// Rows[t][j] is the price of Assets[j] on Dates[t].
type PriceTable struct {
	Dates  []time.Time
	Assets []string
	Rows   [][]float64
}

// NewPriceTable validates and copies the given columns into a PriceTable.
func NewPriceTable(dates []time.Time, assets []string, rows [][]float64) (PriceTable, error) {
	p := PriceTable{
		Dates:  append([]time.Time(nil), dates...),
		Assets: append([]string(nil), assets...),
		Rows:   copyRows(rows),
	}
	if err := p.Validate(); err != nil {
		return PriceTable{}, err
	}
	return p, nil
}

// Validate enforces the table invariants: at least two rows and one asset,
// unique asset names, strictly increasing timestamps and finite positive prices.
func (p PriceTable) Validate() error {
	const op = "price table"

	if len(p.Assets) == 0 {
		return NewDataError(op, "no asset columns")
	}
	if len(p.Rows) < 2 {
		return NewDataError(op, fmt.Sprintf("need at least 2 rows, got %d", len(p.Rows)))
	}
	if len(p.Dates) != len(p.Rows) {
		return NewDataError(op, fmt.Sprintf("%d timestamps for %d rows", len(p.Dates), len(p.Rows)))
	}

	seen := make(map[string]struct{}, len(p.Assets))
	for _, a := range p.Assets {
		if a == "" {
			return NewDataError(op, "empty asset name")
		}
		if _, dup := seen[a]; dup {
			return &DataError{Op: op, Row: -1, Column: a, Reason: "duplicate asset column"}
		}
		seen[a] = struct{}{}
	}

	for t, row := range p.Rows {
		if p.Dates[t].IsZero() {
			return &DataError{Op: op, Row: t, Reason: "missing timestamp"}
		}
		if t > 0 {
			switch {
			case p.Dates[t].Equal(p.Dates[t-1]):
				return &DataError{Op: op, Row: t, Reason: "duplicate timestamp " + p.Dates[t].Format("2006-01-02")}
			case p.Dates[t].Before(p.Dates[t-1]):
				return &DataError{Op: op, Row: t, Reason: "timestamps out of order"}
			}
		}
		if len(row) != len(p.Assets) {
			return &DataError{Op: op, Row: t, Reason: fmt.Sprintf("%d values for %d assets", len(row), len(p.Assets))}
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &DataError{Op: op, Row: t, Column: p.Assets[j], Reason: "price is not finite"}
			}
			if v <= 0 {
				return &DataError{Op: op, Row: t, Column: p.Assets[j], Reason: fmt.Sprintf("price must be positive, got %g", v)}
			}
		}
	}
	return nil
}

// NumRows returns the number of observations.
func (p PriceTable) NumRows() int { return len(p.Rows) }

// NumAssets returns the number of asset columns.
func (p PriceTable) NumAssets() int { return len(p.Assets) }

// Column returns a copy of one asset's price series.
func (p PriceTable) Column(j int) []float64 {
	return column(p.Rows, j)
}

// Head returns the first n rows (fewer if the table is shorter).
func (p PriceTable) Head(n int) PriceTable {
	n = min(n, len(p.Rows))
	return PriceTable{Dates: p.Dates[:n], Assets: p.Assets, Rows: p.Rows[:n]}
}

// ReturnsTable holds period-over-period percentage changes derived from a PriceTable.
// It has one row fewer than its source; Dates[t] is the later timestamp of each pair.
type ReturnsTable struct {
	Dates  []time.Time
	Assets []string
	Rows   [][]float64
}

// NumRows returns the number of return observations.
func (r ReturnsTable) NumRows() int { return len(r.Rows) }

// NumAssets returns the number of asset columns.
func (r ReturnsTable) NumAssets() int { return len(r.Assets) }

// Column returns a copy of one asset's return series.
func (r ReturnsTable) Column(j int) []float64 {
	return column(r.Rows, j)
}

// Head returns the first n rows (fewer if the table is shorter).
func (r ReturnsTable) Head(n int) ReturnsTable {
	n = min(n, len(r.Rows))
	return ReturnsTable{Dates: r.Dates[:n], Assets: r.Assets, Rows: r.Rows[:n]}
}

func column(rows [][]float64, j int) []float64 {
	out := make([]float64, len(rows))
	for t, row := range rows {
		out[t] = row[j]
	}
	return out
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
