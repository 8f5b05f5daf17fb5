// Package renderer turns the session state into markdown for the terminal and
// HTML for exports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/stockchat"
	"github.com/etnz/stockchat/session"
)

//go:embed templates/*.md templates/*.html
var templates embed.FS

// funcs are available in every markdown template.
var funcs = template.FuncMap{
	"code":    codeBlock,
	"literal": Literal,
	"clock":   func(t time.Time) string { return t.Format("15:04:05") },
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

// holdingsData is the view model of the holdings and status templates.
type holdingsData struct {
	Holdings []stockchat.Holding
	Shares   int
}

func newHoldingsData(p *stockchat.Portfolio) holdingsData {
	d := holdingsData{Holdings: p.Holdings()}
	for _, h := range d.Holdings {
		d.Shares += h.Shares
	}
	return d
}

// RenderHoldings renders the holdings list of the portfolio prompt.
func RenderHoldings(p *stockchat.Portfolio) string {
	return renderTemplate("holdings", "holdings.md", nil, newHoldingsData(p))
}

// RenderStatus renders the one paragraph portfolio summary.
func RenderStatus(p *stockchat.Portfolio) string {
	return renderTemplate("status", "status.md", nil, newHoldingsData(p))
}

// RenderPrompt renders the portfolio prompt with the current draft.
func RenderPrompt(p *stockchat.Portfolio) string {
	data := struct {
		holdingsData
		Presets []string
	}{newHoldingsData(p), stockchat.PresetNames()}
	partials := map[string]string{
		"holdings": "holdings.md",
	}
	return renderTemplate("prompt", "prompt.md", partials, data)
}

// toolEntryData is a tool log entry with every server provided field made
// literal, then passed through esc for the target document.
type toolEntryData struct {
	At       time.Time
	Tool     string
	Headline string
	Args     string
	Result   string
}

func newToolEntryData(e session.ToolEntry, currency string, esc func(string) string) toolEntryData {
	d := toolEntryData{
		At:       e.At,
		Tool:     esc(Literal(e.Tool)),
		Headline: esc(Literal(e.Headline())),
	}
	if e.HasArgs() {
		// Args end up in a fenced block, where nothing is interpreted.
		d.Args = Literal(e.PrettyArgs())
	}
	if e.HasResult() {
		d.Result = esc(Literal(e.FormatResult(currency)))
	}
	return d
}

// RenderToolEntry renders one tool log entry. Numeric results are shown in
// currency.
func RenderToolEntry(e session.ToolEntry, currency string) string {
	return renderTemplate("tool_entry", "tool_entry.md", nil, newToolEntryData(e, currency, EscapeMarkdown))
}

// RenderToolLog renders the whole tool log, or its empty state.
func RenderToolLog(entries []session.ToolEntry, currency string) string {
	data := make([]toolEntryData, 0, len(entries))
	for _, e := range entries {
		data = append(data, newToolEntryData(e, currency, EscapeMarkdown))
	}
	partials := map[string]string{
		"tool_entry": "tool_entry.md",
	}
	return renderTemplate("tool_log", "tool_log.md", partials, data)
}

// codeBlock returns s as a fenced code block. The fence is longer than any
// backtick run in s.
func codeBlock(lang, s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", max(3, longest+1))
	return fence + lang + "\n" + strings.TrimRight(s, "\n") + "\n" + fence
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
