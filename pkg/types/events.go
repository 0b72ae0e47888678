package types

// Broadcast event names. Every mutating operation publishes one of these to
// all clients attached to the room; delivery is fire-and-forget.
const (
	EvtMemberJoined        = "member-joined"
	EvtMemberLeft          = "member-left"
	EvtMemberKicked        = "member-kicked"
	EvtMemberUpdated       = "member-updated"
	EvtVoteCast            = "vote-cast"
	EvtVoteReset           = "vote-reset"
	EvtVoteRevealed        = "vote-revealed"
	EvtCanvasObjectUpdated = "canvas-object-updated"
	EvtCanvasObjectDeleted = "canvas-object-deleted"
	EvtTimerUpdate         = "timer-update"
	EvtRoomSettingsUpdated = "room-settings-updated"
	EvtReaction            = "reaction"
)

// Event is one broadcast notification. Payload is whatever DTO the emitting
// operation produced (a Member for member-joined, the sanitized vote list for
// vote-cast, and so on).
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}
