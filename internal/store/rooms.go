package store

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CreateRoom(ctx context.Context, room *Room) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		return fmt.Errorf("store: create room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store: get room %s: %w", id, notFound(err))
	}
	return &room, nil
}

func (s *Store) SaveRoom(ctx context.Context, room *Room) error {
	if err := s.db.WithContext(ctx).Save(room).Error; err != nil {
		return fmt.Errorf("store: save room %s: %w", room.ID, err)
	}
	return nil
}

// SetOwner updates ownerId in place. A nil memberID clears ownership.
func (s *Store) SetOwner(ctx context.Context, roomID string, memberID *string) error {
	err := s.db.WithContext(ctx).Model(&Room{}).
		Where("id = ?", roomID).
		Update("owner_id", memberID).Error
	if err != nil {
		return fmt.Errorf("store: set owner for room %s: %w", roomID, err)
	}
	return nil
}

func (s *Store) SetGameOver(ctx context.Context, roomID string, over bool) error {
	err := s.db.WithContext(ctx).Model(&Room{}).
		Where("id = ?", roomID).
		Update("is_game_over", over).Error
	if err != nil {
		return fmt.Errorf("store: set game over for room %s: %w", roomID, err)
	}
	return nil
}

// TouchRoom bumps lastActivityAt. The guard keeps the column monotonic even
// when touches race or a caller passes a stale clock reading.
func (s *Store) TouchRoom(ctx context.Context, roomID string, now time.Time) error {
	err := s.db.WithContext(ctx).Model(&Room{}).
		Where("id = ? AND last_activity_at < ?", roomID, now).
		Update("last_activity_at", now).Error
	if err != nil {
		return fmt.Errorf("store: touch room %s: %w", roomID, err)
	}
	return nil
}

func (s *Store) ListRoomsInactiveSince(ctx context.Context, cutoff time.Time) ([]Room, error) {
	var rooms []Room
	err := s.db.WithContext(ctx).
		Where("last_activity_at < ?", cutoff).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("store: list inactive rooms: %w", err)
	}
	return rooms, nil
}

// DeleteRoomCascade removes the room and every child record in one
// transaction. Once the room is condemned the children have no invariants
// between each other, so deletion order inside the transaction is arbitrary.
func (s *Store) DeleteRoomCascade(ctx context.Context, roomID string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		for _, model := range []any{&Vote{}, &CanvasObject{}, &Presence{}, &Activity{}, &Member{}} {
			if err := tx.db.Where("room_id = ?", roomID).Delete(model).Error; err != nil {
				return fmt.Errorf("store: cascade delete room %s: %w", roomID, err)
			}
		}
		if err := tx.db.Delete(&Room{}, "id = ?", roomID).Error; err != nil {
			return fmt.Errorf("store: delete room %s: %w", roomID, err)
		}
		return nil
	})
}

// DeleteOrphans removes child rows whose parent room no longer exists.
// Defensive cleanup for historical partial failures; returns rows removed.
func (s *Store) DeleteOrphans(ctx context.Context) (int64, error) {
	var total int64
	sub := s.db.Model(&Room{}).Select("id")
	for _, model := range []any{&Member{}, &Vote{}, &CanvasObject{}, &Presence{}, &Activity{}} {
		res := s.db.WithContext(ctx).Where("room_id NOT IN (?)", sub).Delete(model)
		if res.Error != nil {
			return total, fmt.Errorf("store: delete orphans: %w", res.Error)
		}
		total += res.RowsAffected
	}
	return total, nil
}
