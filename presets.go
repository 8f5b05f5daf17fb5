package stockchat

import (
	"fmt"
	"slices"
	"strings"
)

// presets are the example portfolios offered in the portfolio prompt.
var presets = map[string][]Holding{
	"conservative": {
		{"VOO", 15},
		{"BND", 20},
		{"JNJ", 10},
		{"PG", 10},
		{"KO", 12},
	},
	"tech": {
		{"AAPL", 10},
		{"MSFT", 8},
		{"GOOGL", 5},
		{"NVDA", 6},
	},
	"diversified": {
		{"VOO", 10},
		{"QQQ", 6},
		{"AAPL", 5},
		{"JPM", 8},
		{"BND", 12},
		{"GLD", 4},
	},
}

// Preset returns a fresh copy of the named example portfolio.
func Preset(name string) (*Portfolio, error) {
	holdings, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q, try one of %s", ErrInvalidInput, ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return NewPortfolio(holdings...)
}

// PresetNames returns the example portfolio names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
