package stockchat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
)

// Holding is a number of shares of a single ticker.
type Holding struct {
	Ticker string
	Shares int
}

func (h Holding) String() string { return fmt.Sprintf("%d %s", h.Shares, h.Ticker) }

// Portfolio maps tickers to share counts.
//
// Tickers are always non-empty upper case strings and share counts are always
// positive: every mutation is validated. Holdings keep the order in which
// their ticker was first added. Its zero value is an empty portfolio ready to
// use.
type Portfolio struct {
	tickers []string
	shares  map[string]int
}

// NewPortfolio creates a portfolio with the given holdings, in order.
func NewPortfolio(holdings ...Holding) (*Portfolio, error) {
	p := new(Portfolio)
	for _, h := range holdings {
		if err := p.Set(h.Ticker, h.Shares); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NormalizeTicker trims and upper cases a ticker symbol. An empty result is an
// ErrInvalidInput.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", fmt.Errorf("%w: ticker symbol is empty", ErrInvalidInput)
	}
	return t, nil
}

// ParseShares parses a share count from user input. Only positive integers
// are accepted.
func ParseShares(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number of shares", ErrInvalidInput, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: share count must be positive, got %d", ErrInvalidInput, n)
	}
	return n, nil
}

// Set inserts or overwrites the share count of a ticker.
// The portfolio is left untouched on error.
func (p *Portfolio) Set(ticker string, shares int) error {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return err
	}
	if shares <= 0 {
		return fmt.Errorf("%w: share count must be positive, got %d", ErrInvalidInput, shares)
	}
	if p.shares == nil {
		p.shares = make(map[string]int)
	}
	if _, exists := p.shares[t]; !exists {
		p.tickers = append(p.tickers, t)
	}
	p.shares[t] = shares
	return nil
}

// Add is Set for raw user input: both fields are validated before any
// mutation.
func (p *Portfolio) Add(ticker, shares string) (Holding, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return Holding{}, err
	}
	n, err := ParseShares(shares)
	if err != nil {
		return Holding{}, err
	}
	return Holding{t, n}, p.Set(t, n)
}

// Remove deletes a ticker. It reports whether the ticker was present.
func (p *Portfolio) Remove(ticker string) bool {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if _, ok := p.shares[t]; !ok {
		return false
	}
	delete(p.shares, t)
	for i, x := range p.tickers {
		if x == t {
			p.tickers = append(p.tickers[:i:i], p.tickers[i+1:]...)
			break
		}
	}
	return true
}

// Shares returns the share count of a ticker.
func (p *Portfolio) Shares(ticker string) (int, bool) {
	if p == nil {
		return 0, false
	}
	n, ok := p.shares[strings.ToUpper(strings.TrimSpace(ticker))]
	return n, ok
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tickers)
}

// IsEmpty reports whether the portfolio has no holdings.
func (p *Portfolio) IsEmpty() bool { return p.Len() == 0 }

// Tickers returns the tickers in insertion order.
func (p *Portfolio) Tickers() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.tickers...)
}

// All iterates over tickers and share counts in insertion order.
func (p *Portfolio) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		if p == nil {
			return
		}
		for _, t := range p.tickers {
			if !yield(t, p.shares[t]) {
				return
			}
		}
	}
}

// Holdings returns the holdings in insertion order.
func (p *Portfolio) Holdings() []Holding {
	hs := make([]Holding, 0, p.Len())
	for t, n := range p.All() {
		hs = append(hs, Holding{t, n})
	}
	return hs
}

// Clone returns an independent copy. Cloning nil returns an empty portfolio.
func (p *Portfolio) Clone() *Portfolio {
	c := new(Portfolio)
	for t, n := range p.All() {
		c.Set(t, n)
	}
	return c
}

// Equal reports whether both portfolios hold the same share counts,
// regardless of order.
func (p *Portfolio) Equal(q *Portfolio) bool {
	if p.Len() != q.Len() {
		return false
	}
	for t, n := range p.All() {
		if m, ok := q.Shares(t); !ok || m != n {
			return false
		}
	}
	return true
}

// String returns the holdings as "10 AAPL, 8 MSFT".
func (p *Portfolio) String() string {
	parts := make([]string, 0, p.Len())
	for _, h := range p.Holdings() {
		parts = append(parts, h.String())
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON encodes the portfolio as a JSON object, in insertion order.
func (p Portfolio) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for t, n := range p.All() {
		w.Append(t, n)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object of ticker to share count, keeping the
// order of the keys. A null value decodes to an empty portfolio.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	*p = Portfolio{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("portfolio must be a JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		ticker, _ := tok.(string)
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("invalid share count for %q: %w", ticker, err)
		}
		shares, err := sharesFromNumber(num)
		if err != nil {
			return fmt.Errorf("invalid share count for %q: %w", ticker, err)
		}
		if err := p.Set(ticker, shares); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// sharesFromNumber accepts integral JSON numbers, even when written as floats.
func sharesFromNumber(num json.Number) (int, error) {
	if n, err := num.Int64(); err == nil {
		return int(n), nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not a whole number of shares", ErrInvalidInput, num)
	}
	return int(f), nil
}
