// Package backendtest provides a fake chat backend for tests.
//
// It serves the same JSON contracts as the real backend with canned answers
// and records what it received.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/etnz/stockchat"
	"github.com/go-chi/chi/v5"
)

// Server is a fake backend. Its zero answers are: no stored portfolio,
// successful saves and an "OK" chat reply.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	stored    *stockchat.Portfolio
	reply     stockchat.ChatReply
	code      int
	saveCode  int
	saveState string
	messages  []string
	saves     []*stockchat.Portfolio
	requests  int
	hold      chan struct{}
}

// New starts a fake backend, closed at the end of the test.
func New(t testing.TB) *Server {
	s := &Server{
		reply:     stockchat.ChatReply{Status: stockchat.StatusSuccess, Message: "OK"},
		code:      http.StatusOK,
		saveCode:  http.StatusOK,
		saveState: stockchat.StatusSuccess,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/get_portfolio", s.getPortfolio)
	r.Post("/set_portfolio", s.setPortfolio)
	r.Post("/chat", s.chat)
	return r
}

// Store sets the portfolio returned by the retrieval endpoint.
func (s *Server) Store(p *stockchat.Portfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = p.Clone()
}

// Stored returns the portfolio currently held by the backend.
func (s *Server) Stored() *stockchat.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored.Clone()
}

// Reply sets the HTTP status code and body of the chat endpoint.
func (s *Server) Reply(code int, reply stockchat.ChatReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code, s.reply = code, reply
}

// FailSaves makes the update endpoint answer with code and status.
func (s *Server) FailSaves(code int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCode, s.saveState = code, status
}

// Hold blocks chat replies until the returned function is called.
func (s *Server) Hold() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold := make(chan struct{})
	s.hold = hold
	var once sync.Once
	return func() { once.Do(func() { close(hold) }) }
}

// Messages returns the chat messages received, in order.
func (s *Server) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Saves returns the portfolios received by the update endpoint, in order.
func (s *Server) Saves() []*stockchat.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*stockchat.Portfolio(nil), s.saves...)
}

// Requests returns the number of requests served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	state := stockchat.PortfolioState{HasPortfolio: !s.stored.IsEmpty()}
	if s.stored != nil {
		state.Portfolio = *s.stored.Clone()
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) setPortfolio(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Portfolio stockchat.Portfolio `json:"portfolio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	s.mu.Lock()
	s.requests++
	s.saves = append(s.saves, body.Portfolio.Clone())
	code, status := s.saveCode, s.saveState
	if code == http.StatusOK && status == stockchat.StatusSuccess {
		s.stored = body.Portfolio.Clone()
	}
	s.mu.Unlock()
	writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	s.mu.Lock()
	s.requests++
	s.messages = append(s.messages, body.Message)
	code, reply, hold := s.code, s.reply, s.hold
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, code, reply)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
