package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/backendtest"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newClient(srv *backendtest.Server) *stockchat.Client {
	return stockchat.NewClient(srv.URL, stockchat.DefaultEndpoints(), zerolog.Nop())
}

// waitFor polls cond until it holds, or fails the test.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestREPLScript(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	var out bytes.Buffer
	in := strings.NewReader("/example tech\n/save\nhi\nbye\nignored\n")

	if err := NewREPL(&out, in, s).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got, want := srv.Stored().String(), "10 AAPL, 8 MSFT, 5 GOOGL, 6 NVDA"; got != want {
		t.Errorf("stored = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"hi"}, srv.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	var got []Role
	for _, m := range s.Transcript() {
		got = append(got, m.Role)
	}
	if diff := cmp.Diff([]Role{RoleSystem, RoleUser, RoleBot}, got); diff != "" {
		t.Errorf("transcript roles mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Welcome") {
		t.Errorf("output %q has no welcome line", out.String())
	}
}

func TestREPLPrompts(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	var out bytes.Buffer

	if err := NewREPL(&out, strings.NewReader(""), s).Run(context.Background(), "hello", " ", "how are you?"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"hello", "how are you?"}, srv.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), chatPrompt+"hello\n") {
		t.Errorf("output %q does not echo the prompt", out.String())
	}
}

func TestREPLPromptsQuit(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	var out bytes.Buffer

	if err := NewREPL(&out, strings.NewReader("never read\n"), s).Run(context.Background(), "bye", "hello"); err != nil {
		t.Fatal(err)
	}
	if n := srv.Requests(); n != 0 {
		t.Errorf("got %d requests, want none", n)
	}
}

func TestREPLPortfolioPrompt(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	if err := s.LoadPortfolio(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.PromptOpen() {
		t.Fatal("prompt not open without a stored portfolio")
	}
	var out bytes.Buffer
	in := strings.NewReader("AAPL 10\n5 MSFT, 2 nvda\nKO 4 GLD 1\n3 shares of TSLA\nremove aapl\nremove ko gld\ndone\nbye\n")

	if err := NewREPL(&out, in, s).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, want := srv.Stored().String(), "5 MSFT, 2 NVDA"; got != want {
		t.Errorf("stored = %q, want %q", got, want)
	}
	if s.PromptOpen() {
		t.Error("prompt still open after done")
	}
	if !strings.Contains(out.String(), portfolioPrompt) {
		t.Errorf("output %q never shows the portfolio prompt", out.String())
	}
	if n := len(srv.Messages()); n != 0 {
		t.Errorf("holdings lines were sent as %d chat messages", n)
	}
}

func TestREPLHelp(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	var out bytes.Buffer
	extra := Command{Name: "export", Synopsis: "export the conversation", Run: func(context.Context, *Session, []string) error { return nil }}

	if err := NewREPL(&out, strings.NewReader("/help\n"), s, extra).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"/add", "/clear-tools", "/export", "export the conversation", "bye"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help output does not mention %q:\n%s", want, out.String())
		}
	}
}

func TestREPLBusy(t *testing.T) {
	srv := backendtest.New(t)
	release := srv.Hold()
	defer release()
	rec := new(recorder)
	s := New(newClient(srv), rec, Options{})
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer

	errc := make(chan error, 1)
	go func() { errc <- NewREPL(&out, pr, s).Run(context.Background()) }()

	io.WriteString(pw, "first\n")
	waitFor(t, "the first message", func() bool { return len(srv.Messages()) == 1 })
	io.WriteString(pw, "second\n")
	waitFor(t, "the busy notice", func() bool { return slices.Contains(rec.Events(), "notice:busy") })

	release()
	waitFor(t, "the first reply", func() bool { return s.State() == Idle })
	io.WriteString(pw, "third\n")
	waitFor(t, "the third message", func() bool { return len(srv.Messages()) == 2 })
	io.WriteString(pw, "bye\n")

	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("REPL did not return")
	}

	if diff := cmp.Diff([]string{"first", "third"}, srv.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	var users []string
	for _, m := range s.Transcript() {
		if m.Role == RoleUser {
			users = append(users, m.Text)
		}
	}
	if diff := cmp.Diff([]string{"first", "third"}, users); diff != "" {
		t.Errorf("user messages mismatch (-want +got):\n%s", diff)
	}
}

func TestREPLCancel(t *testing.T) {
	srv := backendtest.New(t)
	s := New(newClient(srv), nil, Options{})
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- NewREPL(io.Discard, pr, s).Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("REPL did not return")
	}
}
