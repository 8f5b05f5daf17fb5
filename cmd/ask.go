package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/renderer"
	"github.com/etnz/stockchat/session"
	"github.com/google/subcommands"
)

// askCmd sends a single message.
type askCmd struct {
	tools bool
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "ask the assistant a single question" }
func (*askCmd) Usage() string {
	return `ask [-tools] <message>

Send one message to the assistant and print the reply.
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.tools, "tools", false, "also print the tool calls made by the assistant")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	message := strings.TrimSpace(strings.Join(f.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "Error: ask needs a message")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		return fail(err)
	}
	if err := a.ask(ctx, os.Stdout, message, c.tools); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func (a *app) ask(ctx context.Context, w io.Writer, message string, tools bool) error {
	if timeout, err := a.cfg.ChatTimeout(); err != nil {
		return err
	} else if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := a.client.Chat(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %w", stockchat.ErrChatRequestFailed, err)
	}
	a.printMarkdown(w, reply.Message)
	fmt.Fprintf(w, "(%.2fs)\n", time.Since(start).Seconds())

	if tools && len(reply.ToolLogs) > 0 {
		now := time.Now()
		entries := make([]session.ToolEntry, 0, len(reply.ToolLogs))
		for _, l := range reply.ToolLogs {
			entries = append(entries, session.ToolEntry{At: now, ToolLog: l})
		}
		a.printMarkdown(w, renderer.RenderToolLog(entries, a.cfg.Display.Currency))
	}
	return nil
}
