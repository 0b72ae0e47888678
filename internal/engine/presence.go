package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

// Ping upserts the member's presence row. Unlike canvas objects, presence
// merges: cursor and isActive only change when explicitly supplied, omitted
// fields keep their prior value. LastPing always advances.
func (e *Engine) Ping(ctx context.Context, roomID, memberID string, cursor *types.Position, isActive *bool) (*types.Presence, error) {
	member, err := e.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.RoomID != roomID {
		return nil, ErrNotAMember
	}

	now := e.now().UTC()
	row := &store.Presence{
		RoomID:   roomID,
		MemberID: memberID,
		IsActive: true,
		LastPing: now,
	}
	if prior, err := e.store.GetPresence(ctx, roomID, memberID); err == nil {
		row.CursorX = prior.CursorX
		row.CursorY = prior.CursorY
		row.IsActive = prior.IsActive
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if cursor != nil {
		row.CursorX = &cursor.X
		row.CursorY = &cursor.Y
	}
	if isActive != nil {
		row.IsActive = *isActive
	}

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.UpsertPresence(ctx, row); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := presenceDTO(row)
	return &dto, nil
}

// ListActivePresence returns active rows, most recently pinged first.
func (e *Engine) ListActivePresence(ctx context.Context, roomID string) ([]types.Presence, error) {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListActivePresence(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Presence, 0, len(rows))
	for i := range rows {
		out = append(out, presenceDTO(&rows[i]))
	}
	return out, nil
}

// MarkInactive flips isActive off without deleting the row. Leave and kick
// use this before hard deletion; the websocket layer uses it on detach.
func (e *Engine) MarkInactive(ctx context.Context, roomID, memberID string) error {
	return e.store.MarkPresenceInactive(ctx, roomID, memberID)
}

// SweepStalePresence deletes rows whose last ping is older than maxAge and
// returns how many were removed. Idempotent; runs on a fixed interval.
func (e *Engine) SweepStalePresence(ctx context.Context, maxAge time.Duration) (int64, error) {
	return e.store.DeleteStalePresence(ctx, e.now().UTC().Add(-maxAge))
}
