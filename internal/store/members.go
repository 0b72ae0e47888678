package store

import (
	"context"
	"fmt"
)

func (s *Store) CreateMember(ctx context.Context, member *Member) error {
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("store: create member: %w", err)
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, id string) (*Member, error) {
	var member Member
	if err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store: get member %s: %w", id, notFound(err))
	}
	return &member, nil
}

func (s *Store) ListMembers(ctx context.Context, roomID string) ([]Member, error) {
	var members []Member
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("store: list members for room %s: %w", roomID, err)
	}
	return members, nil
}

func (s *Store) CountMembers(ctx context.Context, roomID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Member{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count members for room %s: %w", roomID, err)
	}
	return count, nil
}

func (s *Store) SaveMember(ctx context.Context, member *Member) error {
	if err := s.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("store: save member %s: %w", member.ID, err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&Member{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("store: delete member %s: %w", id, err)
	}
	return nil
}
