package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

// portfolioCmd prints the stored portfolio.
type portfolioCmd struct {
	json bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "print the portfolio stored on the server" }
func (*portfolioCmd) Usage() string {
	return `portfolio [-json]

Print the stored portfolio, one holding per line.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the portfolio as a JSON object")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	if err := a.portfolio(ctx, os.Stdout, c.json); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func (a *app) portfolio(ctx context.Context, w io.Writer, asJSON bool) error {
	state, err := a.client.GetPortfolio(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Portfolio)
	}
	if !state.HasPortfolio || state.Portfolio.IsEmpty() {
		fmt.Fprintln(w, "No portfolio set.")
		return nil
	}
	for _, h := range state.Portfolio.Holdings() {
		fmt.Fprintln(w, h)
	}
	return nil
}
