package stockchat

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// holdingSeparator splits holdings text into words.
	holdingSeparator = regexp.MustCompile(`[\s,;]+`)
	// tickerPattern matches a ticker symbol, like "AAPL" or "brk.b".
	tickerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z.\-]*$`)
)

// ParsePortfolio reads holdings typed as pairs of a share count and a ticker,
// in either order: "10 AAPL, 5 msft and 2 NVDA" or "AAPL 10 MSFT 5". Later
// pairs overwrite earlier ones for the same ticker. Any word that is not part
// of a pair makes the whole text invalid.
func ParsePortfolio(text string) (*Portfolio, error) {
	var words []string
	for _, w := range holdingSeparator.Split(strings.TrimSpace(text), -1) {
		if w == "" || strings.EqualFold(w, "and") || w == "&" {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no holdings found, expected pairs like \"10 AAPL\"", ErrInvalidInput)
	}
	if len(words)%2 != 0 {
		return nil, fmt.Errorf("%w: %q is not a list of pairs like \"10 AAPL\"", ErrInvalidInput, text)
	}

	p := new(Portfolio)
	for i := 0; i < len(words); i += 2 {
		ticker, shares, ok := holdingPair(words[i], words[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a holding like \"10 AAPL\"", ErrInvalidInput, words[i]+" "+words[i+1])
		}
		if _, err := p.Add(ticker, shares); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// holdingPair orders a and b as a ticker and a share count.
func holdingPair(a, b string) (ticker, shares string, ok bool) {
	switch {
	case isCount(a) && tickerPattern.MatchString(b):
		return b, a, true
	case tickerPattern.MatchString(a) && isCount(b):
		return a, b, true
	}
	return "", "", false
}

func isCount(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
