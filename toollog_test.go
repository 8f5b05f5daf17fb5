package stockchat

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToolLogUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ToolLog
	}{
		{
			name: "complete",
			data: `{"tool":"get_stock_price","args":{"ticker":"AAPL"},"result":"275.61"}`,
			want: ToolLog{Tool: "get_stock_price", Args: json.RawMessage(`{"ticker":"AAPL"}`), Result: "275.61"},
		},
		{
			name: "no result",
			data: `{"tool":"get_stock_price","args":{"ticker":"AAPL"}}`,
			want: ToolLog{Tool: "get_stock_price", Args: json.RawMessage(`{"ticker":"AAPL"}`)},
		},
		{
			name: "null args",
			data: `{"tool":"suggest_stocks_by_goal","args":null,"result":"ok"}`,
			want: ToolLog{Tool: "suggest_stocks_by_goal", Result: "ok"},
		},
		{
			name: "object result",
			data: `{"tool":"get_portfolio_value","result":{"portfolio_value": 12.5}}`,
			want: ToolLog{Tool: "get_portfolio_value", Result: `{"portfolio_value": 12.5}`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got ToolLog
			if err := json.Unmarshal([]byte(tc.data), &got); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToolLogPrettyArgs(t *testing.T) {
	l := ToolLog{Tool: "get_stock_price", Args: json.RawMessage(`{"ticker":"AAPL"}`)}
	want := "{\n  \"ticker\": \"AAPL\"\n}"
	if got := l.PrettyArgs(); got != want {
		t.Errorf("PrettyArgs() = %q, want %q", got, want)
	}
	if got := (ToolLog{Tool: "x"}).PrettyArgs(); got != "" {
		t.Errorf("PrettyArgs() without args = %q, want empty", got)
	}
}

func TestToolLogHeadline(t *testing.T) {
	tests := []struct {
		args string
		want string
	}{
		{`{"ticker":"AAPL"}`, "AAPL"},
		{`{"tickers":["AAPL","MSFT"]}`, "AAPL, MSFT"},
		{`{"tickers":"AAPL, GOOGL"}`, "AAPL, GOOGL"},
		{`{"portfolio":{"AAPL":10,"VOO":2},"risk_profile":"moderate"}`, "moderate · 2 holdings"},
		{`{"goal":"growth"}`, "growth"},
		{`{"unrelated":1}`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		l := ToolLog{Tool: "t", Args: json.RawMessage(tc.args)}
		if got := l.Headline(); got != tc.want {
			t.Errorf("Headline(%s) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestToolLogFormatResult(t *testing.T) {
	tests := []struct {
		result   string
		currency string
		want     string
	}{
		{"275.61", "USD", "$275.61"},
		{"275.615", "USD", "$275.62"},
		{"1000", "USD", "$1,000.00"},
		{"{'ticker': 'AAPL'}", "USD", "{'ticker': 'AAPL'}"},
		{"275.61", "NOPE", "275.61"},
	}
	for _, tc := range tests {
		l := ToolLog{Tool: "get_stock_price", Result: tc.result}
		if got := l.FormatResult(tc.currency); got != tc.want {
			t.Errorf("FormatResult(%q, %q) = %q, want %q", tc.result, tc.currency, got, tc.want)
		}
	}
}
