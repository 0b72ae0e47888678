package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// Deterministic object IDs for the canvas objects that represent a member.
// Member deletion cascades exactly these.
func ParticipantObjectID(memberID string) string {
	return "participant:" + memberID
}

func VoteCardObjectID(memberID, label string) string {
	return "card:" + memberID + ":" + label
}

// UpsertCanvasObject inserts or fully replaces the row for
// (room, object). Last write wins at the store's commit order; the caller is
// responsible for stamping LastUpdatedAt with the server clock.
func (s *Store) UpsertCanvasObject(ctx context.Context, obj *CanvasObject) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "object_id"}},
		UpdateAll: true,
	}).Create(obj).Error
	if err != nil {
		return fmt.Errorf("store: upsert canvas object %s/%s: %w", obj.RoomID, obj.ObjectID, err)
	}
	return nil
}

func (s *Store) GetCanvasObject(ctx context.Context, roomID, objectID string) (*CanvasObject, error) {
	var obj CanvasObject
	err := s.db.WithContext(ctx).
		First(&obj, "room_id = ? AND object_id = ?", roomID, objectID).Error
	if err != nil {
		return nil, fmt.Errorf("store: get canvas object %s/%s: %w", roomID, objectID, notFound(err))
	}
	return &obj, nil
}

func (s *Store) ListCanvasObjects(ctx context.Context, roomID string) ([]CanvasObject, error) {
	var objects []CanvasObject
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&objects).Error
	if err != nil {
		return nil, fmt.Errorf("store: list canvas objects for room %s: %w", roomID, err)
	}
	return objects, nil
}

func (s *Store) DeleteCanvasObject(ctx context.Context, roomID, objectID string) error {
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND object_id = ?", roomID, objectID).
		Delete(&CanvasObject{}).Error
	if err != nil {
		return fmt.Errorf("store: delete canvas object %s/%s: %w", roomID, objectID, err)
	}
	return nil
}

func (s *Store) DeleteCanvasObjectsForRoom(ctx context.Context, roomID string) error {
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&CanvasObject{}).Error
	if err != nil {
		return fmt.Errorf("store: delete canvas objects for room %s: %w", roomID, err)
	}
	return nil
}

// DeleteMemberCanvasObjects removes the member's participant marker and vote
// cards, identified by their deterministic IDs.
func (s *Store) DeleteMemberCanvasObjects(ctx context.Context, roomID, memberID string) error {
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND (object_id = ? OR object_id LIKE ?)",
			roomID, ParticipantObjectID(memberID), "card:"+memberID+":%").
		Delete(&CanvasObject{}).Error
	if err != nil {
		return fmt.Errorf("store: delete canvas objects for member %s/%s: %w", roomID, memberID, err)
	}
	return nil
}
