package domain

import (
	"encoding/json"
	"math"
)

// PortfolioMetrics is the annualized risk/return profile of one weight vector.
// When risk is zero Sharpe is NaN and SharpeDefined is false.
type PortfolioMetrics struct {
	Risk          float64 `json:"risk" msgpack:"risk"`
	Return        float64 `json:"return" msgpack:"return"`
	Sharpe        float64 `json:"sharpe" msgpack:"sharpe"`
	SharpeDefined bool    `json:"sharpe_defined" msgpack:"sharpe_defined"`
}

// SharpeRatio returns the Sharpe ratio, or ErrUndefinedMetric for zero-risk portfolios.
func (m PortfolioMetrics) SharpeRatio() (float64, error) {
	if !m.SharpeDefined {
		return 0, ErrUndefinedMetric
	}
	return m.Sharpe, nil
}

// MarshalJSON renders an undefined Sharpe ratio as null; JSON has no NaN.
func (m PortfolioMetrics) MarshalJSON() ([]byte, error) {
	var sharpe *float64
	if m.SharpeDefined && !math.IsNaN(m.Sharpe) {
		sharpe = &m.Sharpe
	}
	return json.Marshal(struct {
		Risk          float64  `json:"risk"`
		Return        float64  `json:"return"`
		Sharpe        *float64 `json:"sharpe"`
		SharpeDefined bool     `json:"sharpe_defined"`
	}{m.Risk, m.Return, sharpe, m.SharpeDefined})
}
