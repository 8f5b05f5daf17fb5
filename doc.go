// Package stockchat provides the client side of a conversational
// portfolio-analysis assistant. A language-model backend answers questions
// and calls deterministic financial tools; this package holds what the client
// needs to talk to it.
//
// The core functionalities include:
//   - Portfolio Drafts: an ordered ticker to share-count map, validated on
//     every mutation, with a few example presets and a free-text parser.
//   - Backend Contracts: the JSON shapes of the chat, portfolio retrieval and
//     portfolio update endpoints, and a Client that speaks them.
//   - Tool Logs: the per-turn record of server-side tool calls, with helpers
//     to summarize and format them for display.
//
// The interactive controller lives in the session package, the terminal and
// HTML views in the renderer package, and the `schat` command-line tool in cmd.
package stockchat
