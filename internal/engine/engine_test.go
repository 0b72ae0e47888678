package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

type capturedEvent struct {
	RoomID string
	Event  types.Event
}

// capturePublisher records every notification so tests can assert on the
// broadcast stream without a running hub.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) Notify(roomID string, evt types.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{RoomID: roomID, Event: evt})
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event.Name)
	}
	return out
}

func (p *capturePublisher) last(name string) (types.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Event.Name == name {
			return p.events[i].Event, true
		}
	}
	return types.Event{}, false
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *capturePublisher, *testClock) {
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

	pub := &capturePublisher{}
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clk.Now)}, opts...)
	return New(st, pub, zap.NewNop(), opts...), pub, clk
}

func mustCreateRoom(t *testing.T, e *Engine, name string, opts RoomOptions) string {
	t.Helper()
	room, err := e.CreateRoom(context.Background(), name, opts)
	require.NoError(t, err)
	return room.ID
}

func mustJoin(t *testing.T, e *Engine, roomID, name string, observer bool) string {
	t.Helper()
	member, err := e.Join(context.Background(), roomID, name, observer, "")
	require.NoError(t, err)
	return member.ID
}

func str(s string) *string   { return &s }
func num(v float64) *float64 { return &v }
