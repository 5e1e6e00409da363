package domain

import (
	"fmt"
	"strings"
)

// RecommendationChoice is the investor's stated risk tolerance.
type RecommendationChoice int

const (
	Conservative RecommendationChoice = iota
	Balanced
	Aggressive
)

// Choices lists every recommendation choice in menu order.
var Choices = []RecommendationChoice{Conservative, Balanced, Aggressive}

func (c RecommendationChoice) String() string {
	switch c {
	case Conservative:
		return "conservative"
	case Balanced:
		return "balanced"
	case Aggressive:
		return "aggressive"
	default:
		return fmt.Sprintf("RecommendationChoice(%d)", int(c))
	}
}

// Title is the menu label shown to investors.
func (c RecommendationChoice) Title() string {
	switch c {
	case Conservative:
		return "Very Safe"
	case Balanced:
		return "Moderate"
	default:
		return "Aggressive"
	}
}

// Description explains the recommended portfolio in plain language.
func (c RecommendationChoice) Description() string {
	switch c {
	case Conservative:
		return "Lowest Risk Portfolio (more stable, less return)"
	case Balanced:
		return "Mix of Low Risk + Sharpe Portfolio"
	default:
		return "Highest Sharpe Ratio Portfolio (higher return, higher risk)"
	}
}

// ParseRecommendationChoice accepts the canonical names as well as the
// menu labels ("Very Safe", "Moderate").
func ParseRecommendationChoice(s string) (RecommendationChoice, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "conservative", "very safe", "safe", "low":
		return Conservative, nil
	case "balanced", "moderate", "medium":
		return Balanced, nil
	case "aggressive", "high":
		return Aggressive, nil
	}
	return Conservative, &ValidationError{Field: "risk_choice", Reason: fmt.Sprintf("unknown choice %q (want conservative, balanced or aggressive)", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (c RecommendationChoice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RecommendationChoice) UnmarshalText(text []byte) error {
	parsed, err := ParseRecommendationChoice(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
