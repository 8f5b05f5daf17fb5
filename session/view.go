package session

import "github.com/etnz/stockchat"

// View renders the session. The Session calls it synchronously, with its lock
// held: a View must not call back into the Session.
//
// Portfolios handed to a View are copies.
type View interface {
	// Notice reports a failed action to the user.
	Notice(err error)

	MessageAppended(m Message)
	// Typing shows or hides the transient "bot is typing" indicator.
	Typing(on bool)
	// InputEnabled enables or disables the chat input.
	InputEnabled(on bool)

	ToolEntryAppended(e ToolEntry)
	ToolLogShown(entries []ToolEntry)
	ToolLogCleared()

	// HoldingsChanged re-renders the holdings list of the portfolio prompt.
	HoldingsChanged(p *stockchat.Portfolio)
	// HoldingInputReset clears the holding fields, focus back on the ticker.
	HoldingInputReset()
	// StatusChanged re-renders the portfolio status summary.
	StatusChanged(p *stockchat.Portfolio)
	PromptOpened(p *stockchat.Portfolio)
	PromptClosed()
}

// NopView ignores everything. Embed it to implement part of View.
type NopView struct{}

func (NopView) Notice(error)                         {}
func (NopView) MessageAppended(Message)              {}
func (NopView) Typing(bool)                          {}
func (NopView) InputEnabled(bool)                    {}
func (NopView) ToolEntryAppended(ToolEntry)          {}
func (NopView) ToolLogShown([]ToolEntry)             {}
func (NopView) ToolLogCleared()                      {}
func (NopView) HoldingsChanged(*stockchat.Portfolio) {}
func (NopView) HoldingInputReset()                   {}
func (NopView) StatusChanged(*stockchat.Portfolio)   {}
func (NopView) PromptOpened(*stockchat.Portfolio)    {}
func (NopView) PromptClosed()                        {}
