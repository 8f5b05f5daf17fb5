package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const (
	chatPrompt      = "you> "
	portfolioPrompt = "portfolio> "
)

// REPL is the interactive console of a Session.
//
// Plain lines are chat messages, lines starting with "/" are commands. While
// the portfolio prompt is open plain lines are holdings ("AAPL 10") or
// portfolio commands without the slash ("save", "skip", "example tech").
// Chat turns run in the background: a line sent while a turn is in flight is
// rejected.
type REPL struct {
	w        io.Writer
	r        io.Reader
	Session  *Session
	Commands Commands
}

// NewREPL creates a REPL with the DefaultCommands and the extra ones. w must
// be the writer of the Session's view, or not shared with it.
func NewREPL(w io.Writer, r io.Reader, s *Session, extra ...Command) *REPL {
	cmds := DefaultCommands()
	for _, c := range extra {
		cmds.Add(c)
	}
	return &REPL{
		w:        w,
		r:        r,
		Session:  s,
		Commands: cmds,
	}
}

// Run starts the interactive session. prompts are handled first, as if
// typed, each one waiting for its reply. Run returns on "bye", at the end of
// the input, or when ctx is done.
func (r *REPL) Run(ctx context.Context, prompts ...string) error {
	r.printf("Welcome to stockchat. Type /help for commands and 'bye' to exit.\n")

	// Flush prompts from the list and then ask for the user.
	for _, input := range prompts {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.printf("%s%s\n", r.prompt(), input)
		quit, turn := r.handle(ctx, input)
		if turn != nil {
			turn.Complete(ctx)
		}
		if quit {
			return nil
		}
	}

	// stops the reader when Run returns early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	done := make(chan struct{}, 1)
	inflight := false
	wait := func() {
		if inflight {
			<-done
			inflight = false
		}
	}

	for {
		if !inflight {
			r.printf("%s", r.prompt())
		}
		select {
		case <-ctx.Done():
			wait()
			return ctx.Err()

		case <-done:
			inflight = false

		case input, ok := <-lines:
			if !ok {
				wait()
				r.printf("\n")
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			quit, turn := r.handle(ctx, input)
			if quit {
				wait()
				return nil
			}
			if turn != nil {
				inflight = true
				go func() {
					turn.Complete(ctx)
					done <- struct{}{}
				}()
			}
		}
	}
}

// handle runs a command, or begins a chat turn.
func (r *REPL) handle(ctx context.Context, input string) (quit bool, turn *Turn) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false, nil
	case isQuit(input):
		return true, nil
	case input == "/help" || input == "help":
		r.help()
		return false, nil
	case strings.HasPrefix(input, "/"):
		r.Commands.Dispatch(ctx, r.Session, input)
		return false, nil
	case r.Session.PromptOpen():
		r.portfolioLine(ctx, input)
		return false, nil
	}
	// errors are already rendered by the view.
	turn, _ = r.Session.Begin(input)
	return false, turn
}

// portfolioLine handles a line typed in the portfolio prompt.
func (r *REPL) portfolioLine(ctx context.Context, input string) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	switch {
	case name == "done":
		r.Session.SavePortfolio(ctx)
	case r.Commands[name].Run != nil:
		r.Commands.Dispatch(ctx, r.Session, input)
	default:
		runAdd(ctx, r.Session, fields)
	}
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "bye", "exit", "quit", "/bye", "/exit", "/quit":
		return true
	}
	return false
}

func (r *REPL) prompt() string {
	if r.Session.PromptOpen() {
		return portfolioPrompt
	}
	return chatPrompt
}

func (r *REPL) help() {
	r.Session.locked(func() {
		fmt.Fprintln(r.w, "Type a question to chat with the assistant. Commands:")
		tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
		for _, name := range r.Commands.Names() {
			c := r.Commands[name]
			fmt.Fprintf(tw, "  /%s %s\t%s\n", c.Name, c.Args, c.Synopsis)
		}
		fmt.Fprintf(tw, "  bye\tleave\n")
		tw.Flush()
	})
}

func (r *REPL) printf(format string, args ...any) {
	r.Session.locked(func() {
		fmt.Fprintf(r.w, format, args...)
	})
}
