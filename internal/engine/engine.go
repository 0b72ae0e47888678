// Package engine implements the room/session synchronization core: room
// lifecycle and ownership, membership, the voting round state machine, the
// shared canvas object store, and presence tracking. The entity store is the
// sole synchronization point; the engine holds no in-process locks. After
// every committed mutation the engine notifies the room's observers through a
// Publisher, fire-and-forget.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/internal/ticket"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

// Publisher delivers an event to every client currently viewing the room.
// Implementations must never block and never fail the caller.
type Publisher interface {
	Notify(roomID string, evt types.Event)
}

// Card is one allowed estimate value of the deck. Value is nil for
// non-numeric cards ("?", coffee).
type Card struct {
	Label string
	Value *float64
	Icon  *string
}

// DefaultDeck is the modified-Fibonacci deck most teams estimate with.
func DefaultDeck() []Card {
	num := func(v float64) *float64 { return &v }
	coffee := "coffee"
	return []Card{
		{Label: "1", Value: num(1)},
		{Label: "2", Value: num(2)},
		{Label: "3", Value: num(3)},
		{Label: "5", Value: num(5)},
		{Label: "8", Value: num(8)},
		{Label: "13", Value: num(13)},
		{Label: "21", Value: num(21)},
		{Label: "?"},
		{Label: "☕", Icon: &coffee},
	}
}

type Engine struct {
	store   *store.Store
	pub     Publisher
	labeler ticket.Labeler
	log     *zap.Logger
	deck    []Card
	now     func() time.Time
}

type Option func(*Engine)

// WithClock overrides the server clock; tests use this to make
// last-write-wins stamps deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithDeck(deck []Card) Option {
	return func(e *Engine) { e.deck = deck }
}

func WithLabeler(l ticket.Labeler) Option {
	return func(e *Engine) { e.labeler = l }
}

func New(st *store.Store, pub Publisher, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		pub:     pub,
		labeler: ticket.Noop{},
		log:     log,
		deck:    DefaultDeck(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) notify(roomID, name string, payload any) {
	e.pub.Notify(roomID, types.Event{Name: name, Payload: payload})
}
