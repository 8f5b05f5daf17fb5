package stockchat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// ToolLog is the record of one server-side tool call during a chat turn.
type ToolLog struct {
	Tool   string          `json:"tool"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result string          `json:"result,omitempty"`
}

// UnmarshalJSON accepts results that are not JSON strings, keeping their raw
// JSON text.
func (t *ToolLog) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tool   string          `json:"tool"`
		Args   json.RawMessage `json:"args"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ToolLog{Tool: raw.Tool}
	if !isNull(raw.Args) {
		t.Args = raw.Args
	}
	if isNull(raw.Result) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Result, &s); err == nil {
		t.Result = s
		return nil
	}
	t.Result = string(bytes.TrimSpace(raw.Result))
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// HasArgs reports whether the server sent arguments for this call.
func (t ToolLog) HasArgs() bool { return !isNull(t.Args) }

// HasResult reports whether the server sent a result for this call.
func (t ToolLog) HasResult() bool { return t.Result != "" }

// PrettyArgs returns the arguments as indented JSON, or "" when there are none.
func (t ToolLog) PrettyArgs() string {
	if !t.HasArgs() {
		return ""
	}
	var b bytes.Buffer
	if err := json.Indent(&b, t.Args, "", "  "); err != nil {
		return string(t.Args)
	}
	return b.String()
}

// headlinePaths are the arguments worth a mention in a one-line summary of a
// tool call.
var headlinePaths = []string{"$.ticker", "$.tickers", "$.goal", "$.risk_profile", "$.risk"}

// Headline summarizes the interesting arguments of the call, like
// "AAPL" for get_stock_price or "AAPL, MSFT" for get_multiple_stock_prices.
func (t ToolLog) Headline() string {
	if !t.HasArgs() {
		return ""
	}
	var jobj any
	if err := json.Unmarshal(t.Args, &jobj); err != nil {
		return ""
	}
	var parts []string
	for _, path := range headlinePaths {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			// missing keys are reported as errors.
			continue
		}
		if s := headlineValue(jval); s != "" {
			parts = append(parts, s)
		}
	}
	if jval, err := jsonpath.Get("$.portfolio", jobj); err == nil {
		if m, ok := jval.(map[string]any); ok {
			parts = append(parts, fmt.Sprintf("%d holdings", len(m)))
		}
	}
	return strings.Join(parts, " · ")
}

func headlineValue(jval any) string {
	switch v := jval.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, x := range v {
			items = append(items, fmt.Sprint(x))
		}
		return strings.Join(items, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// FormatResult returns the result for display. Plain numbers, like the price
// returned by get_stock_price, are shown as money in the given currency.
func (t ToolLog) FormatResult(currency string) string {
	if m, ok := ParseMoney(strings.TrimSpace(t.Result), currency); ok {
		return m.String()
	}
	return t.Result
}
