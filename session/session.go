// Package session implements the chat and portfolio client controller.
//
// A Session owns the portfolio draft, the transcript and the tool log. Every
// user action is a method: add, remove, apply an example, save, skip, edit
// and send. The Session talks to the backend through a Backend and reports
// every change to a View, so that it can be driven and tested without any
// terminal.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/etnz/stockchat"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FallbackReply is the bot message shown when a chat turn fails.
const FallbackReply = "Sorry, I encountered an error processing your request. Please try again."

// Backend is what the Session needs from the server. *stockchat.Client
// implements it.
type Backend interface {
	GetPortfolio(ctx context.Context) (stockchat.PortfolioState, error)
	SetPortfolio(ctx context.Context, p *stockchat.Portfolio) error
	Chat(ctx context.Context, message string) (stockchat.ChatReply, error)
}

// State is the chat state machine: a Session accepts a new turn only when
// Idle.
type State int

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting response"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a Session. The zero value is valid.
type Options struct {
	Logger zerolog.Logger
	// Now is the clock, defaults to time.Now.
	Now func() time.Time
	// ChatTimeout bounds each chat turn, zero means no client side timeout.
	ChatTimeout time.Duration
}

// Session is the controller of one conversation.
type Session struct {
	backend     Backend
	view        View
	log         zerolog.Logger
	now         func() time.Time
	chatTimeout time.Duration

	mu         sync.Mutex
	state      State
	draft      *stockchat.Portfolio
	promptOpen bool
	transcript Transcript
	tools      ToolLogView
}

// New creates a Session. A nil view renders nothing.
func New(backend Backend, view View, opts Options) *Session {
	if view == nil {
		view = NopView{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		backend:     backend,
		view:        view,
		log:         opts.Logger,
		now:         opts.Now,
		chatTimeout: opts.ChatTimeout,
		draft:       new(stockchat.Portfolio),
	}
}

// State returns the chat state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the portfolio draft.
func (s *Session) Draft() *stockchat.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// PromptOpen reports whether the portfolio prompt is open.
func (s *Session) PromptOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptOpen
}

// Transcript returns a copy of the messages, oldest first.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// ToolEntries returns a copy of the tool log, oldest first.
func (s *Session) ToolEntries() []ToolEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.Entries()
}

// notice reports err to the view and returns it.
func (s *Session) notice(err error) error {
	s.view.Notice(err)
	return err
}

func (s *Session) appendMessage(role Role, text string, elapsed *time.Duration) Message {
	m := Message{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
		At:   s.now(),
	}
	if elapsed != nil {
		m.Elapsed, m.Timed = *elapsed, true
	}
	s.transcript.append(m)
	s.view.MessageAppended(m)
	return m
}

func (s *Session) openPrompt() {
	s.promptOpen = true
	s.view.PromptOpened(s.draft.Clone())
}

// LoadPortfolio fetches the stored portfolio. A non empty one becomes the
// draft, otherwise the portfolio prompt opens. A failed fetch also opens the
// prompt.
func (s *Session) LoadPortfolio(ctx context.Context) error {
	state, err := s.backend.GetPortfolio(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("cannot load the stored portfolio")
		s.openPrompt()
		return fmt.Errorf("cannot load portfolio: %w", err)
	}
	if state.HasPortfolio && !state.Portfolio.IsEmpty() {
		s.draft = state.Portfolio.Clone()
		s.log.Info().Int("holdings", s.draft.Len()).Msg("portfolio loaded")
		s.view.StatusChanged(s.draft.Clone())
		return nil
	}
	s.openPrompt()
	return nil
}

// AddHolding validates raw ticker and shares fields and inserts or overwrites
// the holding. On invalid input the draft is untouched.
func (s *Session) AddHolding(ticker, shares string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.draft.Add(ticker, shares); err != nil {
		return s.notice(err)
	}
	s.view.HoldingsChanged(s.draft.Clone())
	s.view.HoldingInputReset()
	return nil
}

// RemoveHolding deletes a ticker from the draft. Removing an absent ticker is
// not an error.
func (s *Session) RemoveHolding(ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Remove(ticker)
	s.view.HoldingsChanged(s.draft.Clone())
}

// ApplyExample replaces the whole draft with an example portfolio.
func (s *Session) ApplyExample(name string) error {
	p, err := stockchat.Preset(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.notice(err)
	}
	s.draft = p
	s.view.HoldingsChanged(s.draft.Clone())
	return nil
}

// SavePortfolio sends the draft to the backend. On failure the draft is
// kept, the prompt stays open and the transcript is untouched.
func (s *Session) SavePortfolio(ctx context.Context) error {
	s.mu.Lock()
	if s.draft.IsEmpty() {
		defer s.mu.Unlock()
		return s.notice(fmt.Errorf("%w: add at least one holding before saving", stockchat.ErrEmptyPortfolio))
	}
	snapshot := s.draft.Clone()
	s.mu.Unlock()

	err := s.backend.SetPortfolio(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("portfolio save failed")
		return s.notice(fmt.Errorf("%w: %w", stockchat.ErrSaveFailed, err))
	}
	s.log.Info().Int("holdings", snapshot.Len()).Msg("portfolio saved")
	s.promptOpen = false
	s.view.PromptClosed()
	s.view.StatusChanged(snapshot.Clone())
	s.appendMessage(RoleSystem, savedSummary(snapshot), nil)
	return nil
}

func savedSummary(p *stockchat.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio saved! You hold %d positions:\n\n", p.Len())
	for _, h := range p.Holdings() {
		fmt.Fprintf(&b, "- **%s**: %d shares\n", h.Ticker, h.Shares)
	}
	b.WriteString("\nAsk me anything about it.")
	return b.String()
}

// SkipPortfolio closes the prompt without saving. The draft is kept and can
// still be saved later.
func (s *Session) SkipPortfolio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promptOpen = false
	s.view.PromptClosed()
	s.appendMessage(RoleSystem, "No portfolio set. You can still ask about any stock, and use `/edit` to enter your holdings later.", nil)
}

// EditPortfolio re-opens the portfolio prompt with the current draft.
func (s *Session) EditPortfolio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openPrompt()
}

// ShowPortfolio renders the status summary and the holdings again.
func (s *Session) ShowPortfolio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.StatusChanged(s.draft.Clone())
	s.view.HoldingsChanged(s.draft.Clone())
}

// ShowToolLog renders the whole tool log again.
func (s *Session) ShowToolLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ToolLogShown(s.tools.Entries())
}

// ClearToolLog empties the tool log. The transcript is untouched.
func (s *Session) ClearToolLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.Clear()
	s.view.ToolLogCleared()
}

// Send runs one chat turn, see Begin and Turn.Complete.
func (s *Session) Send(ctx context.Context, text string) error {
	t, err := s.Begin(text)
	if err != nil || t == nil {
		return err
	}
	return t.Complete(ctx)
}

// Turn is a chat turn in flight. The Session stays AwaitingResponse until
// Complete returns.
type Turn struct {
	s    *Session
	text string
}

// Begin starts a chat turn: it appends the user message, disables the input
// and shows the typing indicator. Empty text is ignored and returns a nil
// Turn. A Begin while another turn is in flight is rejected with
// stockchat.ErrBusy and changes nothing.
func (s *Session) Begin(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return nil, s.notice(stockchat.ErrBusy)
	}
	s.appendMessage(RoleUser, text, nil)
	s.state = AwaitingResponse
	s.view.InputEnabled(false)
	s.view.Typing(true)
	return &Turn{s: s, text: text}, nil
}

// Complete sends the message and appends the bot reply and the tool logs.
//
// A failed turn appends the FallbackReply instead and returns an error
// wrapping stockchat.ErrChatRequestFailed. The Session is Idle again and the
// input enabled in every case.
func (t *Turn) Complete(ctx context.Context) error {
	s := t.s
	if s.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chatTimeout)
		defer cancel()
	}
	start := s.now()
	reply, err := s.backend.Chat(ctx, t.text)
	elapsed := max(s.now().Sub(start), 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.state = Idle
		s.view.InputEnabled(true)
	}()
	s.view.Typing(false)

	if err != nil {
		ev := s.log.Error().Err(err)
		if errors.Is(err, context.DeadlineExceeded) {
			ev = ev.Dur("timeout", s.chatTimeout)
		}
		ev.Dur("elapsed", elapsed).Msg("chat turn failed")
		s.appendMessage(RoleBot, FallbackReply, &elapsed)
		return fmt.Errorf("%w: %w", stockchat.ErrChatRequestFailed, err)
	}

	s.log.Debug().Dur("elapsed", elapsed).Int("tool_logs", len(reply.ToolLogs)).Msg("chat turn")
	s.appendMessage(RoleBot, reply.Message, &elapsed)
	for _, l := range reply.ToolLogs {
		s.view.ToolEntryAppended(s.tools.Append(s.now(), l))
	}
	return nil
}

// Notify reports err to the view and returns it. It is meant for commands
// defined outside this package.
func (s *Session) Notify(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice(err)
}

// Announce appends a system message to the transcript.
func (s *Session) Announce(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendMessage(RoleSystem, text, nil)
}

// locked runs f with the session lock held, for writers sharing the view
// output.
func (s *Session) locked(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}
