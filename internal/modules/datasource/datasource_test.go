package datasource

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

func TestLoadCSV(t *testing.T) {
	input := `Date,AAPL,MSFT
2023-01-03,101.5,250
2023-01-02,100,248.5

2023-01-04, 102 ,251.25
`
	prices, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, prices.Assets)
	require.Equal(t, 3, prices.NumRows())
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), prices.Dates[0], "rows are sorted by date")
	assert.Equal(t, []float64{100, 248.5}, prices.Rows[0])
	assert.Equal(t, []float64{102, 251.25}, prices.Rows[2])
}

func TestLoadCSV_DateLayouts(t *testing.T) {
	input := "Date,X\n2023/01/02,1\n01/03/2023,2\n2023-01-04T00:00:00Z,3\n"
	prices, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, prices.Column(0))
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRow int
		wantCol string
	}{
		{
			name:    "empty file",
			input:   "",
			wantRow: -1,
		},
		{
			name:    "header only",
			input:   "Date,A\n",
			wantRow: -1,
		},
		{
			name:    "no asset columns",
			input:   "Date\n2023-01-01\n",
			wantRow: -1,
		},
		{
			name:    "non-numeric cell",
			input:   "Date,A,B\n2023-01-01,1,2\n2023-01-02,1,abc\n",
			wantRow: 2,
			wantCol: "B",
		},
		{
			name:    "bad date",
			input:   "Date,A\n2023-01-01,1\nyesterday,2\n",
			wantRow: 2,
			wantCol: "Date",
		},
		{
			name:    "missing date",
			input:   "Date,A\n2023-01-01,1\n,2\n",
			wantRow: 2,
			wantCol: "Date",
		},
		{
			name:    "duplicate timestamp reports source line",
			input:   "Date,A\n2023-01-05,1\n2023-01-01,2\n2023-01-05,3\n",
			wantRow: 3,
		},
		{
			name:    "zero price reports source line",
			input:   "Date,A\n2023-01-05,1\n2023-01-01,0\n",
			wantRow: 2,
			wantCol: "A",
		},
		{
			name:    "ragged row",
			input:   "Date,A,B\n2023-01-01,1,2\n2023-01-02,1\n",
			wantRow: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			require.Error(t, err)

			var dataErr *domain.DataError
			require.ErrorAs(t, err, &dataErr)
			assert.Equal(t, tt.wantRow, dataErr.Row)
			assert.Equal(t, tt.wantCol, dataErr.Column)
			assert.Equal(t, "load csv", dataErr.Op)
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	prices, err := Synthetic(DefaultSyntheticConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, prices))
	assert.True(t, strings.HasPrefix(buf.String(), "Date,AAPL,MSFT,GOOG,AMZN\n2023-01-01,"))

	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := LoadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, prices, loaded)
}

func TestLoadCSVFile_Missing(t *testing.T) {
	_, err := LoadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
	assert.False(t, domain.IsUserError(err))
}

func TestSynthetic(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	prices, err := Synthetic(cfg)
	require.NoError(t, err)

	assert.Equal(t, 300, prices.NumRows())
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG", "AMZN"}, prices.Assets)
	assert.Equal(t, cfg.Start, prices.Dates[0])
	assert.Equal(t, cfg.Start.AddDate(0, 0, 299), prices.Dates[299])
	require.NoError(t, prices.Validate())

	again, err := Synthetic(cfg)
	require.NoError(t, err)
	assert.Equal(t, prices, again, "fixed seed reproduces the sample data")

	cfg.Seed = 7
	other, err := Synthetic(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, prices.Rows, other.Rows)
}

func TestSynthetic_Validation(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	cfg.Rows = 1
	_, err := Synthetic(cfg)
	assert.True(t, domain.IsUserError(err))

	cfg = DefaultSyntheticConfig()
	cfg.Assets = nil
	_, err = Synthetic(cfg)
	assert.True(t, domain.IsUserError(err))

	cfg = DefaultSyntheticConfig()
	cfg.Assets[0].Volatility = 0
	_, err = Synthetic(cfg)
	assert.True(t, domain.IsUserError(err))
}
