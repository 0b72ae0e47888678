// Package types holds the websocket wire messages. Broadcast payload shapes
// live in pkg/types; these are only the framing around them.
package types

import "github.com/sprintdeck/sprintdeck/pkg/types"

// ClientMessage is what a connected client may send upstream. The only
// supported message is a presence ping; all mutations go through the HTTP
// API.
type ClientMessage struct {
	Type     string          `json:"type"` // "Ping"
	Cursor   *types.Position `json:"cursor,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
}

// ServerMessage frames everything the server pushes: the initial snapshot,
// broadcast events, and errors.
type ServerMessage struct {
	Type    string `json:"type"` // "Snapshot" | event name | "Error"
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}
