package stockchat

import "errors"

// User input errors. They abort the action without side effects.
var (
	// ErrInvalidInput indicates a malformed ticker, share count or preset name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownPreset indicates that no example portfolio has the given name.
	ErrUnknownPreset = errors.New("unknown example portfolio")

	// ErrEmptyPortfolio indicates a save attempted with no holdings.
	ErrEmptyPortfolio = errors.New("portfolio is empty")
)

// Backend errors. State is preserved and the user may retry.
var (
	// ErrSaveFailed indicates a network failure or a non-success status when
	// saving the portfolio.
	ErrSaveFailed = errors.New("portfolio save failed")

	// ErrChatRequestFailed indicates a network failure or a non-success status
	// on a chat turn.
	ErrChatRequestFailed = errors.New("chat request failed")

	// ErrBusy indicates that a chat turn is already in flight.
	ErrBusy = errors.New("a response is still pending")
)
