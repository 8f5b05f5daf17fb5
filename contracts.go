package stockchat

// StatusSuccess is the status reported by the backend when a request
// succeeded. Any other value is a failure.
const StatusSuccess = "success"

// PortfolioState is the answer of the portfolio retrieval endpoint.
//
//	GET /get_portfolio -> {"has_portfolio": true, "portfolio": {"AAPL": 10}}
type PortfolioState struct {
	HasPortfolio bool      `json:"has_portfolio"`
	Portfolio    Portfolio `json:"portfolio"`
}

// setPortfolioRequest is the body of the portfolio update endpoint.
//
//	POST /set_portfolio {"portfolio": {"AAPL": 10}} -> {"status": "success"}
type setPortfolioRequest struct {
	Portfolio Portfolio `json:"portfolio"`
}

// statusResponse is the common envelope of backend answers.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// chatRequest is the body of the chat endpoint.
//
//	POST /chat {"message": "hi"} -> ChatReply
type chatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the answer of the chat endpoint.
type ChatReply struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	ToolLogs []ToolLog `json:"tool_logs,omitempty"`
}

// OK reports whether the backend reported a success.
func (r ChatReply) OK() bool { return r.Status == StatusSuccess }
