package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

func (s *Store) UpsertPresence(ctx context.Context, p *Presence) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "member_id"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("store: upsert presence for %s/%s: %w", p.RoomID, p.MemberID, err)
	}
	return nil
}

func (s *Store) GetPresence(ctx context.Context, roomID, memberID string) (*Presence, error) {
	var p Presence
	err := s.db.WithContext(ctx).
		First(&p, "room_id = ? AND member_id = ?", roomID, memberID).Error
	if err != nil {
		return nil, fmt.Errorf("store: get presence %s/%s: %w", roomID, memberID, notFound(err))
	}
	return &p, nil
}

func (s *Store) ListActivePresence(ctx context.Context, roomID string) ([]Presence, error) {
	var rows []Presence
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Order("last_ping DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: list active presence for room %s: %w", roomID, err)
	}
	return rows, nil
}

func (s *Store) MarkPresenceInactive(ctx context.Context, roomID, memberID string) error {
	err := s.db.WithContext(ctx).Model(&Presence{}).
		Where("room_id = ? AND member_id = ?", roomID, memberID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("store: mark presence inactive %s/%s: %w", roomID, memberID, err)
	}
	return nil
}

func (s *Store) DeletePresence(ctx context.Context, roomID, memberID string) error {
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND member_id = ?", roomID, memberID).
		Delete(&Presence{}).Error
	if err != nil {
		return fmt.Errorf("store: delete presence %s/%s: %w", roomID, memberID, err)
	}
	return nil
}

// DeleteStalePresence removes rows not pinged since the cutoff and reports
// how many were deleted.
func (s *Store) DeleteStalePresence(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("last_ping < ?", cutoff).Delete(&Presence{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete stale presence: %w", res.Error)
	}
	return res.RowsAffected, nil
}
