package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

// Join adds a member to the room. The first joiner becomes owner; this is the
// only place ownership is ever inferred. Joining creates the member's
// participant marker and, for voters, one voting card per deck value.
func (e *Engine) Join(ctx context.Context, roomID, name string, isObserver bool, password string) (*types.Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyMemberName
	}

	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.PasswordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*room.PasswordHash), []byte(password)) != nil {
			return nil, ErrWrongPassword
		}
	}

	now := e.now().UTC()
	member := &store.Member{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		Name:       name,
		IsObserver: isObserver,
		JoinedAt:   now,
	}

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateMember(ctx, member); err != nil {
			return err
		}
		count, err := tx.CountMembers(ctx, roomID)
		if err != nil {
			return err
		}
		if count == 1 {
			if err := tx.SetOwner(ctx, roomID, &member.ID); err != nil {
				return err
			}
		}
		if err := e.seedMemberObjects(ctx, tx, member, now); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := memberDTO(member)
	e.notify(roomID, types.EvtMemberJoined, dto)
	return &dto, nil
}

// Leave removes the member and everything that represents them. If the owner
// leaves, ownerId is deliberately left pointing at the departed member until
// someone transfers ownership explicitly.
func (e *Engine) Leave(ctx context.Context, memberID string) error {
	member, err := e.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		return removeMember(ctx, tx, member, store.ActivityUserLeft, now)
	})
	if err != nil {
		return err
	}

	e.notify(member.RoomID, types.EvtMemberLeft, memberDTO(member))
	return nil
}

// Kick is owner-only. The cleanup matches Leave, but the activity record and
// the broadcast distinguish a kick so clients can render it differently.
func (e *Engine) Kick(ctx context.Context, roomID, kickerID, targetID string) error {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID == nil || *room.OwnerID != kickerID {
		return ErrNotOwner
	}
	if targetID == kickerID {
		return ErrSelfKick
	}
	if room.OwnerID != nil && *room.OwnerID == targetID {
		return ErrKickOwner
	}

	target, err := e.store.GetMember(ctx, targetID)
	if err != nil {
		return err
	}
	if target.RoomID != roomID {
		return ErrNotAMember
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		return removeMember(ctx, tx, target, store.ActivityUserKicked, now)
	})
	if err != nil {
		return err
	}

	e.notify(roomID, types.EvtMemberKicked, memberDTO(target))
	return nil
}

// TransferOwnership atomically moves ownership to another current member.
func (e *Engine) TransferOwnership(ctx context.Context, roomID, currentOwnerID, newOwnerID string) error {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID == nil || *room.OwnerID != currentOwnerID {
		return ErrNotOwner
	}
	if newOwnerID == currentOwnerID {
		return ErrSelfTransfer
	}

	target, err := e.store.GetMember(ctx, newOwnerID)
	if err != nil || target.RoomID != roomID {
		return ErrNotAMember
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SetOwner(ctx, roomID, &newOwnerID); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	room.OwnerID = &newOwnerID
	e.notify(roomID, types.EvtRoomSettingsUpdated, roomDTO(room))
	return nil
}

// IsOwner is a pure read. A room with no explicit owner has no owner;
// ownership is never re-derived from join order here.
func (e *Engine) IsOwner(ctx context.Context, roomID, memberID string) (bool, error) {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room.OwnerID != nil && *room.OwnerID == memberID, nil
}

type MemberUpdate struct {
	Name       *string
	IsObserver *bool
}

// UpdateMember renames a member or toggles their observer flag. Becoming an
// observer removes the vote and voting cards; becoming a voter creates cards.
func (e *Engine) UpdateMember(ctx context.Context, roomID, memberID string, update MemberUpdate) (*types.Member, error) {
	member, err := e.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.RoomID != roomID {
		return nil, ErrNotAMember
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrEmptyMemberName
		}
		member.Name = name
	}

	now := e.now().UTC()
	toggled := update.IsObserver != nil && *update.IsObserver != member.IsObserver
	if toggled {
		member.IsObserver = *update.IsObserver
	}

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		if toggled {
			if member.IsObserver {
				if err := tx.DeleteVote(ctx, roomID, memberID); err != nil {
					return err
				}
				if err := tx.DeleteMemberCanvasObjects(ctx, roomID, memberID); err != nil {
					return err
				}
				if err := tx.UpsertCanvasObject(ctx, participantObject(member, now)); err != nil {
					return err
				}
			} else if err := e.seedVoteCards(ctx, tx, member, now); err != nil {
				return err
			}
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	dto := memberDTO(member)
	e.notify(roomID, types.EvtMemberUpdated, dto)
	return &dto, nil
}

// React records the member's last emitted reaction and broadcasts it. The
// reaction is an ephemeral UI signal; nothing beyond the two member fields is
// persisted.
func (e *Engine) React(ctx context.Context, roomID, memberID, emoji string) error {
	member, err := e.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member.RoomID != roomID {
		return ErrNotAMember
	}

	now := e.now().UTC()
	member.LastReaction = &emoji
	member.LastReactionAt = &now
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SaveMember(ctx, member); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	e.notify(roomID, types.EvtReaction, map[string]any{
		"memberId": memberID,
		"name":     member.Name,
		"emoji":    emoji,
		"at":       now,
	})
	return nil
}

// removeMember is the shared cleanup for Leave and Kick: presence goes
// inactive before the row is deleted so other clients see a clean transition,
// then the vote, canvas objects, presence, and member rows go, and the
// departure is recorded in the activity feed.
func removeMember(ctx context.Context, tx *store.Store, member *store.Member, activityKind string, now time.Time) error {
	if err := tx.MarkPresenceInactive(ctx, member.RoomID, member.ID); err != nil {
		return err
	}
	if err := tx.DeleteVote(ctx, member.RoomID, member.ID); err != nil {
		return err
	}
	if err := tx.DeleteMemberCanvasObjects(ctx, member.RoomID, member.ID); err != nil {
		return err
	}
	if err := tx.DeletePresence(ctx, member.RoomID, member.ID); err != nil {
		return err
	}
	if err := tx.AppendActivity(ctx, &store.Activity{
		RoomID:    member.RoomID,
		Kind:      activityKind,
		UserName:  member.Name,
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := tx.DeleteMember(ctx, member.ID); err != nil {
		return err
	}
	return tx.TouchRoom(ctx, member.RoomID, now)
}
