package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/stockchat"
	"github.com/google/subcommands"
)

// setCmd replaces the stored portfolio.
type setCmd struct {
	example string
}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "replace the portfolio stored on the server" }
func (*setCmd) Usage() string {
	return `set [-example <name>] [holdings]

Replace the stored portfolio. Holdings are free text like "10 AAPL, 5 MSFT".
With -example they are added to the example portfolio.
`
}

func (c *setCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.example, "example", "", "start from an example portfolio: "+strings.Join(stockchat.PresetNames(), ", "))
}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := buildPortfolio(c.example, strings.Join(f.Args(), " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	if err := a.set(ctx, os.Stdout, p); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// buildPortfolio merges the holdings of text into the example portfolio.
func buildPortfolio(example, text string) (*stockchat.Portfolio, error) {
	p := new(stockchat.Portfolio)
	if example != "" {
		var err error
		if p, err = stockchat.Preset(example); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(text) != "" {
		extra, err := stockchat.ParsePortfolio(text)
		if err != nil {
			return nil, err
		}
		for ticker, shares := range extra.All() {
			if err := p.Set(ticker, shares); err != nil {
				return nil, err
			}
		}
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("%w: give holdings or an example", stockchat.ErrEmptyPortfolio)
	}
	return p, nil
}

func (a *app) set(ctx context.Context, w io.Writer, p *stockchat.Portfolio) error {
	if err := a.client.SetPortfolio(ctx, p); err != nil {
		return fmt.Errorf("%w: %w", stockchat.ErrSaveFailed, err)
	}
	fmt.Fprintf(w, "Portfolio saved: %v\n", p)
	return nil
}
