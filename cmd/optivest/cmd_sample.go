package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Bhoomi3044/optivest/internal/modules/datasource"
)

func newSampleCommand(g *globalOptions) *cobra.Command {
	var output string
	var seed uint64
	var rows int

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the synthetic sample price table as CSV",
		Long: `Write the bundled synthetic price table (daily prices for AAPL, MSFT,
GOOG and AMZN starting 2023-01-01) as CSV. The output can be edited and fed
back with "optivest run --prices".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := datasource.DefaultSyntheticConfig()
			cfg.Seed = seed
			cfg.Rows = rows

			prices, err := datasource.Synthetic(cfg)
			if err != nil {
				return err
			}

			g.log.Debug().
				Int("rows", prices.NumRows()).
				Int("assets", prices.NumAssets()).
				Uint64("seed", seed).
				Msg("Generated sample data")

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return datasource.WriteCSV(w, prices)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the CSV to a file instead of stdout")
	cmd.Flags().Uint64Var(&seed, "seed", datasource.SampleSeed, "Random seed for the generated prices")
	cmd.Flags().IntVar(&rows, "rows", datasource.DefaultSyntheticConfig().Rows, "Number of daily rows")

	return cmd
}
