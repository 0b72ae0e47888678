// Package types holds the wire-level representations shared by the HTTP API,
// the websocket feed, and the broadcast hub. Store rows are converted into
// these shapes at the engine boundary; vote sanitization happens during that
// conversion, never in storage.
package types

import (
	"encoding/json"
	"time"
)

type Room struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OwnerID        *string   `json:"ownerId,omitempty"`
	HasPassword    bool      `json:"hasPassword"`
	IsGameOver     bool      `json:"isGameOver"`
	ActiveStoryID  *string   `json:"activeStoryId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type Member struct {
	ID             string     `json:"id"`
	RoomID         string     `json:"roomId"`
	Name           string     `json:"name"`
	IsObserver     bool       `json:"isObserver"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastReaction   *string    `json:"lastReaction,omitempty"`
	LastReactionAt *time.Time `json:"lastReactionAt,omitempty"`
}

// Vote is the client-visible form of a ballot. While the room is still open,
// Label/Value/Icon are nil for every member and only HasVoted carries signal.
type Vote struct {
	RoomID   string   `json:"roomId"`
	MemberID string   `json:"memberId"`
	Label    *string  `json:"label"`
	Value    *float64 `json:"value"`
	Icon     *string  `json:"icon"`
	HasVoted bool     `json:"hasVoted"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CanvasObject struct {
	RoomID        string          `json:"roomId"`
	ObjectID      string          `json:"objectId"`
	Kind          string          `json:"kind"`
	Position      Position        `json:"position"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	IsLocked      bool            `json:"isLocked"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

type Presence struct {
	RoomID   string    `json:"roomId"`
	MemberID string    `json:"memberId"`
	Cursor   *Position `json:"cursor,omitempty"`
	IsActive bool      `json:"isActive"`
	LastPing time.Time `json:"lastPing"`
}

type Activity struct {
	Type      string    `json:"type"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the full room view returned by the snapshot endpoint and sent
// to websocket clients on attach.
type Snapshot struct {
	Room          Room           `json:"room"`
	Members       []Member       `json:"members"`
	Votes         []Vote         `json:"votes"`
	CanvasObjects []CanvasObject `json:"canvasObjects"`
}
