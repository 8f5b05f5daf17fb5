package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/stockchat/renderer"
	"github.com/etnz/stockchat/session"
	"github.com/google/subcommands"
)

// chatCmd is the interactive conversation.
type chatCmd struct {
	noLoad bool
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "start an interactive conversation with the assistant" }
func (*chatCmd) Usage() string {
	return `chat [-no-load] [first message]

Start an interactive conversation with the assistant. The stored portfolio is
loaded first, the portfolio prompt opens when there is none. Type /help for
the commands and 'bye' to leave.
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noLoad, "no-load", false, "do not fetch the stored portfolio on start")
}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	if err := a.chat(ctx, f.Args(), c.noLoad); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func (a *app) chat(ctx context.Context, args []string, noLoad bool) error {
	term, err := a.terminal(os.Stdout)
	if err != nil {
		return err
	}
	timeout, err := a.cfg.ChatTimeout()
	if err != nil {
		return err
	}
	s := session.New(a.client, term, session.Options{
		Logger:      a.log,
		ChatTimeout: timeout,
	})

	if !noLoad {
		if err := s.LoadPortfolio(ctx); err != nil {
			// not fatal: the prompt is open and the chat still works.
			s.Notify(err)
		}
	}

	var prompts []string
	if len(args) > 0 {
		prompts = append(prompts, strings.Join(args, " "))
	}
	repl := session.NewREPL(os.Stdout, os.Stdin, s, exportCommand(a.cfg.Display.Currency, time.Now))
	return repl.Run(ctx, prompts...)
}

// exportCommand writes the conversation to an HTML file.
func exportCommand(currency string, now func() time.Time) session.Command {
	return session.Command{
		Name:     "export",
		Args:     "[file]",
		Synopsis: "write the conversation and the tool log to an HTML file",
		Run: func(_ context.Context, s *session.Session, args []string) error {
			at := now()
			name := "stockchat-" + at.Format("20060102-150405") + ".html"
			if len(args) > 0 {
				name = args[0]
			}
			if err := exportFile(name, renderer.Export{
				At:       at,
				Messages: s.Transcript(),
				Tools:    s.ToolEntries(),
				Currency: currency,
			}); err != nil {
				return s.Notify(err)
			}
			s.Announce(fmt.Sprintf("Conversation exported to `%s`.", name))
			return nil
		},
	}
}

func exportFile(name string, e renderer.Export) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("cannot export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("cannot export: %w", cerr)
		}
	}()
	if err := renderer.ExportHTML(f, e); err != nil {
		return fmt.Errorf("cannot export: %w", err)
	}
	return nil
}
