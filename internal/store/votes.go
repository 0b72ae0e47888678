package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// UpsertVote inserts or fully replaces the member's ballot. The composite
// primary key makes this idempotent on (room, member).
func (s *Store) UpsertVote(ctx context.Context, vote *Vote) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "member_id"}},
		UpdateAll: true,
	}).Create(vote).Error
	if err != nil {
		return fmt.Errorf("store: upsert vote for %s/%s: %w", vote.RoomID, vote.MemberID, err)
	}
	return nil
}

func (s *Store) ListVotes(ctx context.Context, roomID string) ([]Vote, error) {
	var votes []Vote
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("store: list votes for room %s: %w", roomID, err)
	}
	return votes, nil
}

func (s *Store) DeleteVote(ctx context.Context, roomID, memberID string) error {
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND member_id = ?", roomID, memberID).
		Delete(&Vote{}).Error
	if err != nil {
		return fmt.Errorf("store: delete vote for %s/%s: %w", roomID, memberID, err)
	}
	return nil
}

func (s *Store) DeleteVotesForRoom(ctx context.Context, roomID string) error {
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&Vote{}).Error
	if err != nil {
		return fmt.Errorf("store: delete votes for room %s: %w", roomID, err)
	}
	return nil
}
