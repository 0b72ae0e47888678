package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

func TestCreateRoom_SeedsDefaults(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	roomID := mustCreateRoom(t, e, "Sprint 42", RoomOptions{})

	control, err := e.GetObject(ctx, roomID, SessionControlObjectID)
	require.NoError(t, err)
	require.Equal(t, KindSessionControl, control.Kind)

	timer, err := e.GetObject(ctx, roomID, TimerObjectID)
	require.NoError(t, err)
	require.Equal(t, KindTimer, timer.Kind)

	var payload TimerPayload
	require.NoError(t, json.Unmarshal(timer.Payload, &payload))
	require.False(t, payload.IsRunning)
	require.Equal(t, float64(defaultTimerSeconds), payload.TimeRemaining)
}

func TestCreateRoom_EmptyName(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.CreateRoom(context.Background(), "   ", RoomOptions{})
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestUpsertObject_LastWriteWins(t *testing.T) {
	e, pub, clk := newTestEngine(t)
	ctx := context.Background()
	roomID := mustCreateRoom(t, e, "Sprint 42", RoomOptions{})

	first, err := e.UpsertObject(ctx, roomID, "story", KindStory,
		types.Position{X: 10, Y: 20}, json.RawMessage(`{"title":"draft"}`), false, "alice")
	require.NoError(t, err)

	clk.advance(time.Second)
	second, err := e.UpsertObject(ctx, roomID, "story", KindStory,
		types.Position{X: 30, Y: 40}, json.RawMessage(`{"title":"final"}`), true, "bob")
	require.NoError(t, err)

	// Timestamps come from the server clock at write time.
	require.True(t, second.LastUpdatedAt.After(first.LastUpdatedAt))

	objects, err := e.ListObjects(ctx, roomID)
	require.NoError(t, err)
	var stories int
	for _, obj := range objects {
		if obj.ObjectID != "story" {
			continue
		}
		stories++
		require.Equal(t, "bob", obj.LastUpdatedBy)
		require.Equal(t, float64(30), obj.Position.X)
		require.True(t, obj.IsLocked)
		require.JSONEq(t, `{"title":"final"}`, string(obj.Payload))
	}
	require.Equal(t, 1, stories)

	_, ok := pub.last(types.EvtCanvasObjectUpdated)
	require.True(t, ok)
}

func TestUpsertObject_RoomMissing(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.UpsertObject(context.Background(), "missing", "x", KindStory,
		types.Position{}, nil, false, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteObject(t *testing.T) {
	e, pub, _ := newTestEngine(t)
	ctx := context.Background()
	roomID := mustCreateRoom(t, e, "Sprint 42", RoomOptions{})

	require.NoError(t, e.DeleteObject(ctx, roomID, TimerObjectID))
	_, err := e.GetObject(ctx, roomID, TimerObjectID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, e.DeleteObject(ctx, roomID, TimerObjectID), store.ErrNotFound)

	evt, ok := pub.last(types.EvtCanvasObjectDeleted)
	require.True(t, ok)
	payload, ok := evt.Payload.(map[string]string)
	require.True(t, ok)
	require.Equal(t, TimerObjectID, payload["objectId"])
}

func TestTimer_StartAndPause(t *testing.T) {
	e, pub, clk := newTestEngine(t)
	ctx := context.Background()
	roomID := mustCreateRoom(t, e, "Sprint 42", RoomOptions{})
	aliceID := mustJoin(t, e, roomID, "Alice", false)

	duration := 300.0
	obj, err := e.StartTimer(ctx, roomID, aliceID, &duration)
	require.NoError(t, err)

	var payload TimerPayload
	require.NoError(t, json.Unmarshal(obj.Payload, &payload))
	require.True(t, payload.IsRunning)
	require.NotNil(t, payload.StartedAt)
	require.Equal(t, 300.0, payload.TimeRemaining)

	clk.advance(120 * time.Second)
	obj, err = e.PauseTimer(ctx, roomID, aliceID)
	require.NoError(t, err)

	payload = TimerPayload{}
	require.NoError(t, json.Unmarshal(obj.Payload, &payload))
	require.False(t, payload.IsRunning)
	require.Nil(t, payload.StartedAt)
	require.InDelta(t, 180.0, payload.TimeRemaining, 0.001)

	// Pausing an already-paused timer passes the remaining time through.
	clk.advance(time.Minute)
	obj, err = e.PauseTimer(ctx, roomID, aliceID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(obj.Payload, &payload))
	require.InDelta(t, 180.0, payload.TimeRemaining, 0.001)

	_, ok := pub.last(types.EvtTimerUpdate)
	require.True(t, ok)
}

func TestTimer_PauseClampsAtZero(t *testing.T) {
	e, _, clk := newTestEngine(t)
	ctx := context.Background()
	roomID := mustCreateRoom(t, e, "Sprint 42", RoomOptions{})
	aliceID := mustJoin(t, e, roomID, "Alice", false)

	duration := 60.0
	_, err := e.StartTimer(ctx, roomID, aliceID, &duration)
	require.NoError(t, err)

	clk.advance(5 * time.Minute)
	obj, err := e.PauseTimer(ctx, roomID, aliceID)
	require.NoError(t, err)

	var payload TimerPayload
	require.NoError(t, json.Unmarshal(obj.Payload, &payload))
	require.Equal(t, 0.0, payload.TimeRemaining)
}
