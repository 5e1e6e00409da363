// Package charts renders optimization results as PNG images: the risk/return
// scatter of every trial and the recommended allocation as a pie.
package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	gocharts "github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Bhoomi3044/optivest/internal/modules/optimization"
)

const (
	defaultWidth  = 1024
	defaultHeight = 640
)

var (
	trialColor    = drawing.ColorFromHex("1f77b4").WithAlpha(64)
	frontierColor = drawing.ColorFromHex("2ca02c")
	bestColor     = drawing.ColorFromHex("d62728")
	safestColor   = drawing.ColorFromHex("ff7f0e")
)

// Service renders charts
type Service struct {
	width  int
	height int
	log    zerolog.Logger
}

// NewService creates a chart renderer with the default canvas size
func NewService(log zerolog.Logger) *Service {
	return &Service{
		width:  defaultWidth,
		height: defaultHeight,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// RenderFrontier writes the risk/return scatter of every trial as PNG.
// The best-Sharpe and lowest-risk trials are enlarged and the sampled
// efficient frontier is drawn as a line through the envelope points.
func (s *Service) RenderFrontier(w io.Writer, result *optimization.Result) error {
	ts := result.Trials
	if ts.Len() == 0 {
		return errors.New("no trials to plot")
	}

	xs := make([]float64, ts.Len())
	ys := make([]float64, ts.Len())
	for i, m := range ts.Metrics {
		xs[i] = m.Risk
		ys[i] = m.Return
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    fmt.Sprintf("Trials (%d)", ts.Len()),
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 2, DotColor: trialColor},
			XValues: xs,
			YValues: ys,
		},
	}

	if len(result.Frontier) >= 2 {
		fx := make([]float64, len(result.Frontier))
		fy := make([]float64, len(result.Frontier))
		for i, p := range result.Frontier {
			fx[i] = p.Risk
			fy[i] = p.Return
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Efficient frontier",
			Style:   chart.Style{StrokeWidth: 2, StrokeColor: frontierColor},
			XValues: fx,
			YValues: fy,
		})
	}

	series = append(series,
		marker("Lowest risk", result.LowestRisk, safestColor),
		marker("Best Sharpe", result.BestSharpe, bestColor),
	)

	graph := chart.Chart{
		Title:  "Risk vs Return",
		Width:  s.width,
		Height: s.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Risk (annualized volatility)",
			ValueFormatter: chart.PercentValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Expected annual return",
			ValueFormatter: chart.PercentValueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render frontier chart: %w", err)
	}

	s.log.Debug().
		Str("run_id", result.RunID).
		Int("trials", ts.Len()).
		Int("frontier_points", len(result.Frontier)).
		Msg("Rendered frontier chart")
	return nil
}

// RenderAllocation writes the recommended weights as a PNG pie chart.
// Assets are listed in the run's column order.
func (s *Service) RenderAllocation(w io.Writer, result *optimization.Result) error {
	rec := result.Recommended
	if len(result.Assets) == 0 {
		return errors.New("no assets to plot")
	}

	values := make([]float64, len(result.Assets))
	labels := make([]string, len(result.Assets))
	for i, asset := range result.Assets {
		values[i] = rec.Weights[asset]
		labels[i] = fmt.Sprintf("%s %.1f%%", asset, rec.Weights[asset]*100)
	}

	p, err := gocharts.PieRender(
		values,
		gocharts.TitleTextOptionFunc(rec.Title+" allocation", rec.Description),
		gocharts.PaddingOptionFunc(gocharts.Box{Top: 20, Right: 20, Bottom: 20, Left: 20}),
		gocharts.LegendOptionFunc(gocharts.LegendOption{
			Orient: gocharts.OrientVertical,
			Data:   labels,
			Left:   gocharts.PositionLeft,
		}),
		gocharts.PieSeriesShowLabel(),
		gocharts.WidthOptionFunc(s.width),
		gocharts.HeightOptionFunc(s.height),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.PNGTypeOption(),
	)
	if err != nil {
		return fmt.Errorf("failed to render allocation chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode allocation chart: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write allocation chart: %w", err)
	}
	return nil
}

func marker(name string, p optimization.Portfolio, color drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 7, DotColor: color},
		XValues: []float64{p.Metrics.Risk},
		YValues: []float64{p.Metrics.Return},
	}
}
