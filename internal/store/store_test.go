package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive for the whole
	// test.
	sqlDB.SetMaxOpenConns(1)
	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func seedRoom(t *testing.T, s *Store, id string, lastActivity time.Time) *Room {
	t.Helper()
	room := &Room{
		ID:             id,
		Name:           "room " + id,
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
	require.NoError(t, s.CreateRoom(context.Background(), room))
	return room
}

func TestGetRoom_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRoom(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTouchRoom_Monotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedRoom(t, s, "r1", base)

	later := base.Add(time.Hour)
	require.NoError(t, s.TouchRoom(ctx, "r1", later))

	// A stale touch must not move the clock backwards.
	require.NoError(t, s.TouchRoom(ctx, "r1", base.Add(time.Minute)))

	room, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	require.True(t, room.LastActivityAt.Equal(later))
}

func TestUpsertCanvasObject_IdempotentIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedRoom(t, s, "r1", now)

	obj := &CanvasObject{
		RoomID: "r1", ObjectID: "timer", Kind: "timer",
		X: 1, Y: 2,
		Payload:       datatypes.JSON(`{"timeRemaining":300}`),
		LastUpdatedBy: "a", LastUpdatedAt: now,
	}
	require.NoError(t, s.UpsertCanvasObject(ctx, obj))

	obj2 := &CanvasObject{
		RoomID: "r1", ObjectID: "timer", Kind: "timer",
		X: 9, Y: 9,
		Payload:       datatypes.JSON(`{"timeRemaining":120}`),
		LastUpdatedBy: "b", LastUpdatedAt: now.Add(time.Second),
	}
	require.NoError(t, s.UpsertCanvasObject(ctx, obj2))

	objects, err := s.ListCanvasObjects(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	require.Equal(t, "b", objects[0].LastUpdatedBy)
	require.Equal(t, float64(9), objects[0].X)
}

func TestDeleteMemberCanvasObjects_OnlyTheirs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedRoom(t, s, "r1", now)

	for _, id := range []string{
		ParticipantObjectID("alice"),
		VoteCardObjectID("alice", "5"),
		VoteCardObjectID("alice", "8"),
		ParticipantObjectID("bob"),
		"timer",
	} {
		require.NoError(t, s.UpsertCanvasObject(ctx, &CanvasObject{
			RoomID: "r1", ObjectID: id, Kind: "x", LastUpdatedAt: now,
		}))
	}

	require.NoError(t, s.DeleteMemberCanvasObjects(ctx, "r1", "alice"))

	objects, err := s.ListCanvasObjects(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	for _, obj := range objects {
		require.NotContains(t, obj.ObjectID, "alice")
	}
}

func TestDeleteStalePresence_ReturnsCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedRoom(t, s, "r1", now)

	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "old", IsActive: true, LastPing: now.Add(-time.Hour)}))
	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "fresh", IsActive: true, LastPing: now}))

	count, err := s.DeleteStalePresence(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	rows, err := s.ListActivePresence(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "fresh", rows[0].MemberID)
}

func TestListActivePresence_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedRoom(t, s, "r1", now)

	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "a", IsActive: true, LastPing: now.Add(-time.Minute)}))
	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "b", IsActive: true, LastPing: now}))
	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "c", IsActive: false, LastPing: now}))

	rows, err := s.ListActivePresence(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "b", rows[0].MemberID)
	require.Equal(t, "a", rows[1].MemberID)
}

func TestDeleteRoomCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedRoom(t, s, "r1", now)
	seedRoom(t, s, "r2", now)

	require.NoError(t, s.CreateMember(ctx, &Member{ID: "m1", RoomID: "r1", Name: "Alice", JoinedAt: now}))
	require.NoError(t, s.UpsertVote(ctx, &Vote{RoomID: "r1", MemberID: "m1", CastAt: now}))
	require.NoError(t, s.UpsertCanvasObject(ctx, &CanvasObject{RoomID: "r1", ObjectID: "timer", Kind: "timer", LastUpdatedAt: now}))
	require.NoError(t, s.UpsertPresence(ctx, &Presence{RoomID: "r1", MemberID: "m1", IsActive: true, LastPing: now}))
	require.NoError(t, s.CreateMember(ctx, &Member{ID: "m2", RoomID: "r2", Name: "Bob", JoinedAt: now}))

	require.NoError(t, s.DeleteRoomCascade(ctx, "r1"))

	_, err := s.GetRoom(ctx, "r1")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetMember(ctx, "m1")
	require.ErrorIs(t, err, ErrNotFound)
	votes, err := s.ListVotes(ctx, "r1")
	require.NoError(t, err)
	require.Empty(t, votes)

	// The other room is untouched.
	_, err = s.GetMember(ctx, "m2")
	require.NoError(t, err)
}

func TestDeleteOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedRoom(t, s, "r1", now)

	require.NoError(t, s.CreateMember(ctx, &Member{ID: "m1", RoomID: "r1", Name: "Alice", JoinedAt: now}))
	// Orphans: children of a room that never existed.
	require.NoError(t, s.CreateMember(ctx, &Member{ID: "ghost", RoomID: "gone", Name: "Ghost", JoinedAt: now}))
	require.NoError(t, s.UpsertVote(ctx, &Vote{RoomID: "gone", MemberID: "ghost", CastAt: now}))

	count, err := s.DeleteOrphans(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	_, err = s.GetMember(ctx, "m1")
	require.NoError(t, err)
	_, err = s.GetMember(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
