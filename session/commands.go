package session

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/stockchat"
)

// Command is a named user action.
type Command struct {
	Name     string
	Args     string // argument synopsis, e.g. "<ticker> <shares>"
	Synopsis string
	Run      func(ctx context.Context, s *Session, args []string) error
}

// Commands is a dispatch table, by name.
type Commands map[string]Command

// Add registers c, replacing any command with the same name.
func (t Commands) Add(c Command) { t[c.Name] = c }

// Names returns the command names, sorted.
func (t Commands) Names() []string {
	return slices.Sorted(maps.Keys(t))
}

// Dispatch runs the command named by the first word of line.
func (t Commands) Dispatch(ctx context.Context, s *Session, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	c, ok := t[name]
	if !ok {
		return s.Notify(fmt.Errorf("%w: unknown command %q, type /help", stockchat.ErrInvalidInput, name))
	}
	return c.Run(ctx, s, fields[1:])
}

// DefaultCommands returns the portfolio and tool log commands.
func DefaultCommands() Commands {
	t := make(Commands)
	t.Add(Command{
		Name:     "add",
		Args:     "<ticker> <shares> | <shares> <ticker>...",
		Synopsis: "add or update holdings in the portfolio draft",
		Run:      runAdd,
	})
	t.Add(Command{
		Name:     "remove",
		Args:     "<ticker>...",
		Synopsis: "remove holdings from the portfolio draft",
		Run: func(_ context.Context, s *Session, args []string) error {
			if len(args) == 0 {
				return s.Notify(fmt.Errorf("%w: remove needs a ticker", stockchat.ErrInvalidInput))
			}
			for _, ticker := range args {
				s.RemoveHolding(strings.Trim(ticker, ","))
			}
			return nil
		},
	})
	t.Add(Command{
		Name:     "example",
		Args:     "<" + strings.Join(stockchat.PresetNames(), "|") + ">",
		Synopsis: "replace the portfolio draft with an example portfolio",
		Run: func(_ context.Context, s *Session, args []string) error {
			if len(args) != 1 {
				return s.Notify(fmt.Errorf("%w: example needs one of %s", stockchat.ErrInvalidInput, strings.Join(stockchat.PresetNames(), ", ")))
			}
			return s.ApplyExample(args[0])
		},
	})
	t.Add(Command{
		Name:     "save",
		Synopsis: "save the portfolio draft on the server",
		Run: func(ctx context.Context, s *Session, _ []string) error {
			return s.SavePortfolio(ctx)
		},
	})
	t.Add(Command{
		Name:     "skip",
		Synopsis: "close the portfolio prompt without saving",
		Run: func(_ context.Context, s *Session, _ []string) error {
			s.SkipPortfolio()
			return nil
		},
	})
	t.Add(Command{
		Name:     "edit",
		Synopsis: "open the portfolio prompt with the current draft",
		Run: func(_ context.Context, s *Session, _ []string) error {
			s.EditPortfolio()
			return nil
		},
	})
	t.Add(Command{
		Name:     "portfolio",
		Synopsis: "show the portfolio draft",
		Run: func(_ context.Context, s *Session, _ []string) error {
			s.ShowPortfolio()
			return nil
		},
	})
	t.Add(Command{
		Name:     "tools",
		Synopsis: "show the tool calls made by the assistant",
		Run: func(_ context.Context, s *Session, _ []string) error {
			s.ShowToolLog()
			return nil
		},
	})
	t.Add(Command{
		Name:     "clear-tools",
		Synopsis: "clear the tool log",
		Run: func(_ context.Context, s *Session, _ []string) error {
			s.ClearToolLog()
			return nil
		},
	})
	return t
}

// runAdd accepts "AAPL 10" as a single holding, and otherwise a list of pairs
// like "10 AAPL, 5 MSFT" or "AAPL 10 MSFT 5". A list with a word outside any
// pair changes nothing.
func runAdd(_ context.Context, s *Session, args []string) error {
	switch len(args) {
	case 0:
		return s.AddHolding("", "")
	case 1:
		return s.AddHolding(args[0], "")
	case 2:
		if !isDigits(args[0]) {
			return s.AddHolding(args[0], args[1])
		}
	}
	p, err := stockchat.ParsePortfolio(strings.Join(args, " "))
	if err != nil {
		return s.Notify(err)
	}
	for _, h := range p.Holdings() {
		if err := s.AddHolding(h.Ticker, fmt.Sprint(h.Shares)); err != nil {
			return err
		}
	}
	return nil
}

func isDigits(s string) bool {
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
