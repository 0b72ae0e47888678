package engine

import (
	"context"
	"encoding/json"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

func roomDTO(r *store.Room) types.Room {
	return types.Room{
		ID:             r.ID,
		Name:           r.Name,
		OwnerID:        r.OwnerID,
		HasPassword:    r.PasswordHash != nil,
		IsGameOver:     r.IsGameOver,
		ActiveStoryID:  r.ActiveStoryID,
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.LastActivityAt,
	}
}

func memberDTO(m *store.Member) types.Member {
	return types.Member{
		ID:             m.ID,
		RoomID:         m.RoomID,
		Name:           m.Name,
		IsObserver:     m.IsObserver,
		JoinedAt:       m.JoinedAt,
		LastReaction:   m.LastReaction,
		LastReactionAt: m.LastReactionAt,
	}
}

// voteDTO enforces the sanitization invariant: until the room is revealed,
// label/value/icon are nulled for every vote and only HasVoted survives. The
// underlying record always holds the real data.
func voteDTO(v *store.Vote, revealed bool) types.Vote {
	dto := types.Vote{
		RoomID:   v.RoomID,
		MemberID: v.MemberID,
		HasVoted: v.Label != nil,
	}
	if revealed {
		dto.Label = v.Label
		dto.Value = v.Value
		dto.Icon = v.Icon
	}
	return dto
}

func objectDTO(o *store.CanvasObject) types.CanvasObject {
	return types.CanvasObject{
		RoomID:        o.RoomID,
		ObjectID:      o.ObjectID,
		Kind:          o.Kind,
		Position:      types.Position{X: o.X, Y: o.Y},
		Payload:       json.RawMessage(o.Payload),
		IsLocked:      o.IsLocked,
		LastUpdatedBy: o.LastUpdatedBy,
		LastUpdatedAt: o.LastUpdatedAt,
	}
}

func presenceDTO(p *store.Presence) types.Presence {
	dto := types.Presence{
		RoomID:   p.RoomID,
		MemberID: p.MemberID,
		IsActive: p.IsActive,
		LastPing: p.LastPing,
	}
	if p.CursorX != nil && p.CursorY != nil {
		dto.Cursor = &types.Position{X: *p.CursorX, Y: *p.CursorY}
	}
	return dto
}

// voteList reads the room's votes sanitized for the room's current state.
// The list is unordered by contract.
func (e *Engine) voteList(ctx context.Context, room *store.Room) ([]types.Vote, error) {
	votes, err := e.store.ListVotes(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Vote, 0, len(votes))
	for i := range votes {
		out = append(out, voteDTO(&votes[i], room.IsGameOver))
	}
	return out, nil
}
