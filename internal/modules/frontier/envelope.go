package frontier

import (
	"math"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

// DefaultBuckets is the number of risk bands used to trace the frontier.
const DefaultBuckets = 40

// Point is one trial on the sampled efficient frontier.
type Point struct {
	Index  int     `json:"index" msgpack:"index"`
	Risk   float64 `json:"risk" msgpack:"risk"`
	Return float64 `json:"return" msgpack:"return"`
}

// Envelope approximates the efficient frontier from a trial set. The risk
// range is cut into equal-width buckets; the highest-return trial of each
// bucket is kept if it beats every kept point at lower risk. Points come
// back ordered by increasing risk.
func Envelope(ts *domain.TrialSet, buckets int) []Point {
	if ts.Len() == 0 {
		return nil
	}
	if buckets < 1 {
		buckets = 1
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range ts.Metrics {
		lo = math.Min(lo, m.Risk)
		hi = math.Max(hi, m.Risk)
	}
	width := (hi - lo) / float64(buckets)

	best := make([]int, buckets)
	for b := range best {
		best[b] = -1
	}
	for i, m := range ts.Metrics {
		b := 0
		if width > 0 {
			b = min(int((m.Risk-lo)/width), buckets-1)
		}
		if best[b] < 0 || m.Return > ts.Metrics[best[b]].Return {
			best[b] = i
		}
	}

	points := make([]Point, 0, buckets)
	floor := math.Inf(-1)
	for _, i := range best {
		if i < 0 {
			continue
		}
		m := ts.Metrics[i]
		if m.Return <= floor {
			continue
		}
		floor = m.Return
		points = append(points, Point{Index: i, Risk: m.Risk, Return: m.Return})
	}
	return points
}
