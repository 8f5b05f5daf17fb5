package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/session"
)

// TerminalOptions configure a Terminal.
type TerminalOptions struct {
	// Style is a glamour standard style ("dark", "light", "notty", ...). Empty
	// picks one from the terminal background.
	Style string
	// WordWrap is the wrapping width, zero disables wrapping.
	WordWrap int
	// Currency of numeric tool results.
	Currency string
	// ShowUser echoes user messages, for when the input is not typed on the
	// same terminal.
	ShowUser bool
}

// Terminal renders a session as markdown on a terminal.
type Terminal struct {
	w      io.Writer
	md     *glamour.TermRenderer
	opts   TerminalOptions
	typing bool
}

var _ session.View = (*Terminal)(nil)

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer, opts TerminalOptions) (*Terminal, error) {
	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(opts.WordWrap))
	if err != nil {
		return nil, fmt.Errorf("cannot create the markdown renderer: %w", err)
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	return &Terminal{w: w, md: md, opts: opts}, nil
}

// Markdown renders md for the terminal. It falls back to the raw text when
// the renderer fails.
func (t *Terminal) Markdown(md string) string {
	out, err := t.md.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (t *Terminal) print(md string) {
	t.clearTyping()
	fmt.Fprint(t.w, t.Markdown(md))
}

func (t *Terminal) println(format string, args ...any) {
	t.clearTyping()
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Terminal) clearTyping() {
	if t.typing {
		// erase the indicator line.
		fmt.Fprint(t.w, "\r\x1b[2K")
		t.typing = false
	}
}

func (t *Terminal) Notice(err error) {
	t.println("! %s", Literal(err.Error()))
}

func (t *Terminal) MessageAppended(m session.Message) {
	switch m.Role {
	case session.RoleUser:
		if t.opts.ShowUser {
			t.println("you: %s", Literal(m.Text))
		}
	case session.RoleBot:
		t.print(Literal(m.Text))
		if m.Timed {
			t.println("  (%s)", m.ResponseTime())
		}
	default:
		t.print(Literal(m.Text))
	}
}

func (t *Terminal) Typing(on bool) {
	if on {
		t.clearTyping()
		fmt.Fprint(t.w, "assistant is typing...")
		t.typing = true
		return
	}
	t.clearTyping()
}

// InputEnabled is a no-op, the REPL hides its prompt while a turn is in
// flight.
func (t *Terminal) InputEnabled(bool) {}

func (t *Terminal) ToolEntryAppended(e session.ToolEntry) {
	t.print(RenderToolEntry(e, t.opts.Currency))
}

func (t *Terminal) ToolLogShown(entries []session.ToolEntry) {
	t.print(RenderToolLog(entries, t.opts.Currency))
}

func (t *Terminal) ToolLogCleared() {
	t.println("Tool log cleared.")
}

func (t *Terminal) HoldingsChanged(p *stockchat.Portfolio) {
	t.print(RenderHoldings(p))
}

// HoldingInputReset is a no-op, holdings are typed on a fresh line each time.
func (t *Terminal) HoldingInputReset() {}

func (t *Terminal) StatusChanged(p *stockchat.Portfolio) {
	t.print(RenderStatus(p))
}

func (t *Terminal) PromptOpened(p *stockchat.Portfolio) {
	t.print(RenderPrompt(p))
}

func (t *Terminal) PromptClosed() {
	t.println("%s", strings.Repeat("-", 20))
}
