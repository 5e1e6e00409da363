// Package datasource loads price tables from CSV uploads and generates the
// synthetic sample data set.
package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

const opLoadCSV = "load csv"

// dateLayouts are tried in order when parsing the index column.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// LoadCSVFile reads a price table from a file on disk.
func LoadCSVFile(path string) (domain.PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PriceTable{}, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	return LoadCSV(f)
}

// LoadCSV reads a price table. The first column is the date index and the
// header names each asset; every other cell must be a positive number.
// Rows are sorted by date before validation. Row numbers in errors are
// 1-based data rows (the header is row 0).
func LoadCSV(r io.Reader) (domain.PriceTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.PriceTable{}, domain.NewDataError(opLoadCSV, "file is empty")
	}
	if err != nil {
		return domain.PriceTable{}, readError(-1, err)
	}
	if len(header) < 2 {
		return domain.PriceTable{}, domain.NewDataError(opLoadCSV, "need a date column and at least one asset column")
	}
	assets := make([]string, len(header)-1)
	for j, name := range header[1:] {
		assets[j] = strings.TrimSpace(name)
	}

	type record struct {
		line int
		date time.Time
		vals []float64
	}
	var records []record

	for line := 1; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.PriceTable{}, readError(line, err)
		}
		if isBlank(fields) {
			continue
		}

		date, err := parseDate(fields[0])
		if err != nil {
			return domain.PriceTable{}, &domain.DataError{Op: opLoadCSV, Row: line, Column: header[0], Reason: err.Error()}
		}

		vals := make([]float64, len(assets))
		for j, cell := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return domain.PriceTable{}, &domain.DataError{Op: opLoadCSV, Row: line, Column: assets[j], Reason: fmt.Sprintf("not a number: %q", cell)}
			}
			vals[j] = v
		}
		records = append(records, record{line: line, date: date, vals: vals})
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].date.Before(records[b].date)
	})

	dates := make([]time.Time, len(records))
	rows := make([][]float64, len(records))
	for i, rec := range records {
		dates[i] = rec.date
		rows[i] = rec.vals
	}

	prices, err := domain.NewPriceTable(dates, assets, rows)
	if err != nil {
		// Report the source line rather than the sorted position.
		var dataErr *domain.DataError
		if errors.As(err, &dataErr) {
			dataErr.Op = opLoadCSV
			if dataErr.Row >= 0 && dataErr.Row < len(records) {
				dataErr.Row = records[dataErr.Row].line
			}
		}
		return domain.PriceTable{}, err
	}
	return prices, nil
}

// WriteCSV writes prices in the layout LoadCSV reads.
func WriteCSV(w io.Writer, prices domain.PriceTable) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Date"}, prices.Assets...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(header))
	for t, row := range prices.Rows {
		record[0] = prices.Dates[t].Format("2006-01-02")
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", t+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// readError classifies a csv.Reader failure: malformed CSV is bad data,
// anything else (I/O, size limits) is passed through wrapped.
func readError(line int, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &domain.DataError{Op: opLoadCSV, Row: line, Reason: parseErr.Err.Error()}
	}
	return fmt.Errorf("failed to read price data: %w", err)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
