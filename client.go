package stockchat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Endpoints are the backend paths, relative to the base URL.
type Endpoints struct {
	GetPortfolio string
	SetPortfolio string
	Chat         string
}

// DefaultEndpoints returns the paths served by the reference backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		GetPortfolio: "/get_portfolio",
		SetPortfolio: "/set_portfolio",
		Chat:         "/chat",
	}
}

// Client speaks the backend JSON contracts.
//
// It sets no timeout of its own: callers bound each call with the context.
type Client struct {
	baseURL    string
	endpoints  Endpoints
	httpClient *http.Client
}

// NewClient creates a client targeting the given backend URL. Round trips are
// logged at debug level on log.
func NewClient(baseURL string, endpoints Endpoints, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		endpoints: endpoints,
		httpClient: &http.Client{
			Transport: &loggingTransport{base: http.DefaultTransport, log: log},
		},
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// GetPortfolio fetches the portfolio stored by the backend.
func (c *Client) GetPortfolio(ctx context.Context) (PortfolioState, error) {
	var state PortfolioState
	if err := jget(ctx, c.httpClient, c.url(c.endpoints.GetPortfolio), &state); err != nil {
		return PortfolioState{}, err
	}
	return state, nil
}

// SetPortfolio replaces the portfolio stored by the backend. A non-success
// status is an error.
func (c *Client) SetPortfolio(ctx context.Context, p *Portfolio) error {
	var resp statusResponse
	if err := jpost(ctx, c.httpClient, c.url(c.endpoints.SetPortfolio), setPortfolioRequest{Portfolio: *p.Clone()}, &resp); err != nil {
		return err
	}
	if resp.Status != StatusSuccess {
		return fmt.Errorf("backend status %q: %s", resp.Status, resp.Message)
	}
	return nil
}

// Chat sends one user message and returns the bot reply. A non-success status
// is an error, the reply is returned anyway for its message.
func (c *Client) Chat(ctx context.Context, message string) (ChatReply, error) {
	var reply ChatReply
	if err := jpost(ctx, c.httpClient, c.url(c.endpoints.Chat), chatRequest{Message: message}, &reply); err != nil {
		return ChatReply{}, err
	}
	if !reply.OK() {
		return reply, fmt.Errorf("backend status %q: %s", reply.Status, reply.Message)
	}
	return reply, nil
}
