package store

import (
	"context"
	"fmt"
)

const (
	ActivityUserLeft   = "user_left"
	ActivityUserKicked = "user_kicked"
)

func (s *Store) AppendActivity(ctx context.Context, activity *Activity) error {
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("store: append activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivities(ctx context.Context, roomID string) ([]Activity, error) {
	var rows []Activity
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: list activities for room %s: %w", roomID, err)
	}
	return rows, nil
}
