package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sprintdeck/sprintdeck/internal/store"
)

func newTestSweeper(t *testing.T) (*Sweeper, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	st := store.New(db)
	require.NoError(t, st.Migrate())

	return New(st, zap.NewNop(), Config{
		PresenceInterval: time.Minute,
		PresenceMaxAge:   10 * time.Minute,
		RoomInterval:     time.Hour,
		RoomInactiveDays: 8,
	}), st
}

func seedRoom(t *testing.T, st *store.Store, id string, lastActivity time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.CreateRoom(ctx, &store.Room{
		ID:             id,
		Name:           "room " + id,
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}))
	require.NoError(t, st.CreateMember(ctx, &store.Member{
		ID: id + "-m1", RoomID: id, Name: "Alice", JoinedAt: lastActivity,
	}))
	require.NoError(t, st.UpsertVote(ctx, &store.Vote{
		RoomID: id, MemberID: id + "-m1", CastAt: lastActivity,
	}))
	require.NoError(t, st.UpsertCanvasObject(ctx, &store.CanvasObject{
		RoomID: id, ObjectID: "timer", Kind: "timer", LastUpdatedAt: lastActivity,
	}))
	require.NoError(t, st.UpsertPresence(ctx, &store.Presence{
		RoomID: id, MemberID: id + "-m1", IsActive: true, LastPing: lastActivity,
	}))
}

func TestSweepInactiveRooms_EvictsOldRooms(t *testing.T) {
	s, st := newTestSweeper(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	seedRoom(t, st, "old", now.AddDate(0, 0, -9))
	seedRoom(t, st, "fresh", now.AddDate(0, 0, -2))

	deleted, err := s.SweepInactiveRooms(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = st.GetRoom(ctx, "old")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetMember(ctx, "old-m1")
	require.ErrorIs(t, err, store.ErrNotFound)
	votes, err := st.ListVotes(ctx, "old")
	require.NoError(t, err)
	require.Empty(t, votes)
	objects, err := st.ListCanvasObjects(ctx, "old")
	require.NoError(t, err)
	require.Empty(t, objects)

	_, err = st.GetRoom(ctx, "fresh")
	require.NoError(t, err)
	_, err = st.GetMember(ctx, "fresh-m1")
	require.NoError(t, err)
}

func TestSweepInactiveRooms_Idempotent(t *testing.T) {
	s, st := newTestSweeper(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	seedRoom(t, st, "old", now.AddDate(0, 0, -30))

	deleted, err := s.SweepInactiveRooms(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	deleted, err = s.SweepInactiveRooms(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
}

func TestStartStop(t *testing.T) {
	s, _ := newTestSweeper(t)
	s.cfg.PresenceInterval = 10 * time.Millisecond
	s.cfg.RoomInterval = 10 * time.Millisecond

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop() // must return promptly with both loops drained
}
