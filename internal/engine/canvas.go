package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

// Canvas object kinds. The payload is opaque to the synchronizer; these tags
// tell clients how to interpret it.
const (
	KindParticipant    = "participant"
	KindTimer          = "timer"
	KindVotingCard     = "voting-card"
	KindSessionControl = "session-control"
	KindResults        = "results"
	KindStory          = "story"
)

// Well-known object IDs for the singleton objects every room carries.
const (
	TimerObjectID          = "timer"
	SessionControlObjectID = "session-control"
	ResultsObjectID        = "results"
)

const defaultTimerSeconds = 300

// TimerPayload is the convention for a "timer" object's payload. The server
// stores it verbatim; clients count down locally from TimeRemaining.
type TimerPayload struct {
	IsRunning     bool       `json:"isRunning"`
	TimeRemaining float64    `json:"timeRemaining"`
	Duration      float64    `json:"duration"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
}

type cardPayload struct {
	Label string   `json:"label"`
	Value *float64 `json:"value,omitempty"`
	Icon  *string  `json:"icon,omitempty"`
}

// UpsertObject inserts or fully replaces the object at (room, object). The
// whole payload is replaced, never merged, so callers must send the complete
// state they intend. LastUpdatedAt is stamped with the server clock at write
// time: concurrent writes are ordered by arrival at the store, last write
// wins. The lock flag is persisted as a display hint only; the synchronizer
// does not enforce it.
func (e *Engine) UpsertObject(ctx context.Context, roomID, objectID, kind string, pos types.Position, payload json.RawMessage, isLocked bool, updatedBy string) (*types.CanvasObject, error) {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	obj := &store.CanvasObject{
		RoomID:        roomID,
		ObjectID:      objectID,
		Kind:          kind,
		X:             pos.X,
		Y:             pos.Y,
		Payload:       datatypes.JSON(payload),
		IsLocked:      isLocked,
		LastUpdatedBy: updatedBy,
		LastUpdatedAt: now,
	}
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.UpsertCanvasObject(ctx, obj); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := objectDTO(obj)
	e.notify(roomID, types.EvtCanvasObjectUpdated, dto)
	return &dto, nil
}

func (e *Engine) GetObject(ctx context.Context, roomID, objectID string) (*types.CanvasObject, error) {
	obj, err := e.store.GetCanvasObject(ctx, roomID, objectID)
	if err != nil {
		return nil, err
	}
	dto := objectDTO(obj)
	return &dto, nil
}

func (e *Engine) ListObjects(ctx context.Context, roomID string) ([]types.CanvasObject, error) {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	objects, err := e.store.ListCanvasObjects(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]types.CanvasObject, 0, len(objects))
	for i := range objects {
		out = append(out, objectDTO(&objects[i]))
	}
	return out, nil
}

func (e *Engine) DeleteObject(ctx context.Context, roomID, objectID string) error {
	if _, err := e.store.GetCanvasObject(ctx, roomID, objectID); err != nil {
		return err
	}
	now := e.now().UTC()
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DeleteCanvasObject(ctx, roomID, objectID); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}
	e.notify(roomID, types.EvtCanvasObjectDeleted, map[string]string{"objectId": objectID})
	return nil
}

func (e *Engine) DeleteAllObjects(ctx context.Context, roomID string) error {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return err
	}
	now := e.now().UTC()
	return e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DeleteCanvasObjectsForRoom(ctx, roomID); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
}

// StartTimer marks the room timer running from now. A non-nil duration also
// resets the countdown to that many seconds.
func (e *Engine) StartTimer(ctx context.Context, roomID, memberID string, duration *float64) (*types.CanvasObject, error) {
	return e.updateTimer(ctx, roomID, memberID, func(p *TimerPayload, now time.Time) {
		if duration != nil {
			p.Duration = *duration
			p.TimeRemaining = *duration
		}
		p.IsRunning = true
		p.StartedAt = &now
	})
}

// PauseTimer stops the countdown, folding the elapsed time into
// TimeRemaining: max(0, remaining-(now-startedAt)) while running, unchanged
// otherwise.
func (e *Engine) PauseTimer(ctx context.Context, roomID, memberID string) (*types.CanvasObject, error) {
	return e.updateTimer(ctx, roomID, memberID, func(p *TimerPayload, now time.Time) {
		if p.IsRunning && p.StartedAt != nil {
			remaining := p.TimeRemaining - now.Sub(*p.StartedAt).Seconds()
			if remaining < 0 {
				remaining = 0
			}
			p.TimeRemaining = remaining
		}
		p.IsRunning = false
		p.StartedAt = nil
	})
}

func (e *Engine) updateTimer(ctx context.Context, roomID, memberID string, mutate func(*TimerPayload, time.Time)) (*types.CanvasObject, error) {
	obj, err := e.store.GetCanvasObject(ctx, roomID, TimerObjectID)
	if err != nil {
		return nil, err
	}

	var payload TimerPayload
	if len(obj.Payload) > 0 {
		if err := json.Unmarshal(obj.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode timer payload: %w", err)
		}
	}

	now := e.now().UTC()
	mutate(&payload, now)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode timer payload: %w", err)
	}
	obj.Payload = datatypes.JSON(raw)
	obj.LastUpdatedBy = memberID
	obj.LastUpdatedAt = now

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.UpsertCanvasObject(ctx, obj); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := objectDTO(obj)
	e.notify(roomID, types.EvtTimerUpdate, dto)
	return &dto, nil
}

// defaultObjects are created with the room itself: the session control panel
// and the shared timer.
func defaultObjects(roomID string, now time.Time) []*store.CanvasObject {
	timer, _ := json.Marshal(TimerPayload{
		TimeRemaining: defaultTimerSeconds,
		Duration:      defaultTimerSeconds,
	})
	return []*store.CanvasObject{
		{
			RoomID:        roomID,
			ObjectID:      SessionControlObjectID,
			Kind:          KindSessionControl,
			X:             0,
			Y:             -200,
			Payload:       datatypes.JSON(`{}`),
			LastUpdatedBy: "system",
			LastUpdatedAt: now,
		},
		{
			RoomID:        roomID,
			ObjectID:      TimerObjectID,
			Kind:          KindTimer,
			X:             240,
			Y:             -200,
			Payload:       datatypes.JSON(timer),
			LastUpdatedBy: "system",
			LastUpdatedAt: now,
		},
	}
}

func participantObject(member *store.Member, now time.Time) *store.CanvasObject {
	payload, _ := json.Marshal(map[string]any{
		"memberId":   member.ID,
		"name":       member.Name,
		"isObserver": member.IsObserver,
	})
	return &store.CanvasObject{
		RoomID:        member.RoomID,
		ObjectID:      store.ParticipantObjectID(member.ID),
		Kind:          KindParticipant,
		X:             0,
		Y:             0,
		Payload:       datatypes.JSON(payload),
		LastUpdatedBy: member.ID,
		LastUpdatedAt: now,
	}
}

// seedMemberObjects creates the canvas objects that represent a member: the
// participant marker and, for voters, one voting card per deck value.
func (e *Engine) seedMemberObjects(ctx context.Context, tx *store.Store, member *store.Member, now time.Time) error {
	if err := tx.UpsertCanvasObject(ctx, participantObject(member, now)); err != nil {
		return err
	}
	if member.IsObserver {
		return nil
	}
	return e.seedVoteCards(ctx, tx, member, now)
}

func (e *Engine) seedVoteCards(ctx context.Context, tx *store.Store, member *store.Member, now time.Time) error {
	for i, card := range e.deck {
		payload, err := json.Marshal(cardPayload{Label: card.Label, Value: card.Value, Icon: card.Icon})
		if err != nil {
			return fmt.Errorf("encode card payload: %w", err)
		}
		obj := &store.CanvasObject{
			RoomID:        member.RoomID,
			ObjectID:      store.VoteCardObjectID(member.ID, card.Label),
			Kind:          KindVotingCard,
			X:             float64(i) * 90,
			Y:             400,
			Payload:       datatypes.JSON(payload),
			LastUpdatedBy: member.ID,
			LastUpdatedAt: now,
		}
		if err := tx.UpsertCanvasObject(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}
