package session

import (
	"fmt"
	"math"
	"time"
)

// Role tells who authored a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system" // authored by the client itself, e.g. after a save.
)

// Message is one entry of the transcript.
type Message struct {
	ID   string
	Role Role
	Text string
	At   time.Time

	// Elapsed is the response time of a bot message, valid when Timed is set.
	Elapsed time.Duration
	Timed   bool
}

// ResponseTime returns the response time in seconds, with two decimals.
func (m Message) ResponseTime() string {
	if !m.Timed {
		return ""
	}
	return fmt.Sprintf("%.2fs", m.Elapsed.Seconds())
}

// Seconds returns the response time in seconds rounded to two decimals.
func (m Message) Seconds() float64 {
	return math.Round(m.Elapsed.Seconds()*100) / 100
}

// Transcript is the append-only list of messages of a session.
type Transcript struct {
	messages []Message
}

func (t *Transcript) append(m Message) { t.messages = append(t.messages, m) }

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.messages) }

// Messages returns a copy of the messages, oldest first.
func (t *Transcript) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
