// Package returns turns a price history into period-over-period percentage changes.
package returns

import (
	"slices"

	"github.com/Bhoomi3044/optivest/internal/domain"
	"github.com/Bhoomi3044/optivest/pkg/formulas"
)

// Compute derives the returns table for prices. The first row has no
// predecessor and is dropped, so the result has prices.NumRows()-1 rows.
// The price table is validated first; zero or negative prices are a DataError.
func Compute(prices domain.PriceTable) (domain.ReturnsTable, error) {
	if err := prices.Validate(); err != nil {
		return domain.ReturnsTable{}, err
	}

	n := prices.NumRows() - 1
	rows := make([][]float64, n)
	for t := range rows {
		rows[t] = make([]float64, prices.NumAssets())
	}

	// Column-wise so each asset goes through the shared percent-change formula.
	for j := range prices.Assets {
		for t, r := range formulas.PercentChange(prices.Column(j)) {
			rows[t][j] = r
		}
	}

	return domain.ReturnsTable{
		Dates:  slices.Clone(prices.Dates[1:]),
		Assets: slices.Clone(prices.Assets),
		Rows:   rows,
	}, nil
}
