package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

type RoomOptions struct {
	Password      string
	ActiveStoryID *string
}

// CreateRoom creates an empty room seeded with its default canvas objects
// (session control panel and timer). The first member to join becomes owner.
func (e *Engine) CreateRoom(ctx context.Context, name string, opts RoomOptions) (*types.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoomName
	}

	now := e.now().UTC()
	room := &store.Room{
		ID:             uuid.NewString(),
		Name:           name,
		ActiveStoryID:  opts.ActiveStoryID,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if opts.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		h := string(hash)
		room.PasswordHash = &h
	}

	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		for _, obj := range defaultObjects(room.ID, now) {
			if err := tx.UpsertCanvasObject(ctx, obj); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := roomDTO(room)
	return &dto, nil
}

func (e *Engine) GetRoom(ctx context.Context, roomID string) (*types.Room, error) {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	dto := roomDTO(room)
	return &dto, nil
}

func (e *Engine) DeleteRoom(ctx context.Context, roomID string) error {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return err
	}
	return e.store.DeleteRoomCascade(ctx, roomID)
}

type RoomSettings struct {
	Name          *string
	ActiveStoryID *string
	ClearStory    bool
}

// UpdateRoomSettings is owner-only. Emits room-settings-updated.
func (e *Engine) UpdateRoomSettings(ctx context.Context, roomID, callerID string, settings RoomSettings) (*types.Room, error) {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID == nil || *room.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	if settings.Name != nil {
		name := strings.TrimSpace(*settings.Name)
		if name == "" {
			return nil, ErrEmptyRoomName
		}
		room.Name = name
	}
	if settings.ClearStory {
		room.ActiveStoryID = nil
	} else if settings.ActiveStoryID != nil {
		room.ActiveStoryID = settings.ActiveStoryID
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SaveRoom(ctx, room); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := roomDTO(room)
	e.notify(roomID, types.EvtRoomSettingsUpdated, dto)
	return &dto, nil
}

// GetSnapshot returns the full room view: room, members, sanitized votes, and
// canvas objects. Reads are not transactionally isolated from concurrent
// writes; the broadcast feed promptly delivers any newer state.
func (e *Engine) GetSnapshot(ctx context.Context, roomID string) (*types.Snapshot, error) {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	members, err := e.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	votes, err := e.voteList(ctx, room)
	if err != nil {
		return nil, err
	}
	objects, err := e.store.ListCanvasObjects(ctx, roomID)
	if err != nil {
		return nil, err
	}

	snap := &types.Snapshot{
		Room:          roomDTO(room),
		Members:       make([]types.Member, 0, len(members)),
		Votes:         votes,
		CanvasObjects: make([]types.CanvasObject, 0, len(objects)),
	}
	for i := range members {
		snap.Members = append(snap.Members, memberDTO(&members[i]))
	}
	for i := range objects {
		snap.CanvasObjects = append(snap.CanvasObjects, objectDTO(&objects[i]))
	}
	return snap, nil
}

func (e *Engine) Activities(ctx context.Context, roomID string) ([]types.Activity, error) {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListActivities(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Activity{Type: row.Kind, UserName: row.UserName, CreatedAt: row.CreatedAt})
	}
	return out, nil
}
