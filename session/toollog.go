package session

import (
	"time"

	"github.com/etnz/stockchat"
)

// ToolEntry is a tool log as displayed: with the client time it was shown at.
type ToolEntry struct {
	At time.Time
	stockchat.ToolLog
}

// ToolLogView is the append-only diagnostic list of tool calls reported by the
// backend, independent from the transcript.
type ToolLogView struct {
	entries []ToolEntry
}

// Append adds an entry displayed at the given time.
func (v *ToolLogView) Append(at time.Time, log stockchat.ToolLog) ToolEntry {
	e := ToolEntry{At: at, ToolLog: log}
	v.entries = append(v.entries, e)
	return e
}

// Clear discards all entries.
func (v *ToolLogView) Clear() { v.entries = nil }

// Empty reports whether the view shows its empty state.
func (v *ToolLogView) Empty() bool { return len(v.entries) == 0 }

// Entries returns a copy of the entries, oldest first.
func (v *ToolLogView) Entries() []ToolEntry {
	return append([]ToolEntry(nil), v.entries...)
}
