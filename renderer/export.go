package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/etnz/stockchat/session"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Export is the content of an exported conversation.
type Export struct {
	Title    string
	At       time.Time
	Messages []session.Message
	Tools    []session.ToolEntry
	Currency string
}

type exportMessage struct {
	session.Message
	HTML template.HTML // sanitized rendering of markdown text, empty for user text
}

// ExportHTML writes the conversation as a standalone HTML page.
//
// User text is escaped. Bot and system markdown is converted without raw
// HTML and then sanitized.
func ExportHTML(w io.Writer, e Export) error {
	tmpl, err := template.ParseFS(templates, "templates/export.html")
	if err != nil {
		return fmt.Errorf("cannot parse export template: %w", err)
	}
	if e.Title == "" {
		e.Title = "stockchat conversation"
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy := bluemonday.UGCPolicy()

	data := struct {
		Title    string
		At       time.Time
		Messages []exportMessage
		Tools    []toolEntryData
	}{Title: e.Title, At: e.At}

	for _, m := range e.Messages {
		em := exportMessage{Message: m}
		if m.Role != session.RoleUser {
			var buf bytes.Buffer
			if err := md.Convert([]byte(Literal(m.Text)), &buf); err != nil {
				return fmt.Errorf("cannot convert message %s: %w", m.ID, err)
			}
			em.HTML = template.HTML(policy.SanitizeBytes(buf.Bytes()))
		}
		data.Messages = append(data.Messages, em)
	}
	for _, t := range e.Tools {
		data.Tools = append(data.Tools, newToolEntryData(t, e.Currency, asIs))
	}

	return tmpl.ExecuteTemplate(w, "export.html", data)
}

// asIs leaves tool fields to the escaping of html/template.
func asIs(s string) string { return s }
