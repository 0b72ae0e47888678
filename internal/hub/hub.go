// Package hub is the broadcast fan-out: a single goroutine owning the
// room-keyed subscriber registry, driven by typed messages on an inbox
// channel. Delivery is fire-and-forget; a subscriber that cannot keep up is
// dropped rather than ever blocking a mutation.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/pkg/types"
)

type Msg interface{ isHubMsg() }

type Subscribe struct {
	RoomID   string
	ClientID string
	Outbox   chan types.Event // where this client wants to receive events
}

type Unsubscribe struct {
	RoomID   string
	ClientID string
}

type Publish struct {
	RoomID string
	Event  types.Event
}

// Stats reflects internal state without data races; used by tests.
type Stats struct {
	RoomID string
	Reply  chan int
}

type Shutdown struct{}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (Stats) isHubMsg()       {}
func (Shutdown) isHubMsg()    {}

type Hub struct {
	inbox  chan Msg
	rooms  map[string]map[string]chan types.Event
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 256),
		rooms:  make(map[string]map[string]chan types.Event),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Notify enqueues an event for every client attached to the room. It never
// blocks the caller: if the hub's inbox is saturated the event is dropped and
// logged, per the fire-and-forget contract.
func (h *Hub) Notify(roomID string, evt types.Event) {
	select {
	case h.inbox <- Publish{RoomID: roomID, Event: evt}:
	default:
		h.log.Warn("hub inbox full, dropping event",
			zap.String("room_id", roomID),
			zap.String("event", evt.Name))
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				clients := h.rooms[msg.RoomID]
				if clients == nil {
					clients = make(map[string]chan types.Event)
					h.rooms[msg.RoomID] = clients
				}
				clients[msg.ClientID] = msg.Outbox

			case Unsubscribe:
				h.detach(msg.RoomID, msg.ClientID)

			case Publish:
				h.broadcast(msg.RoomID, msg.Event)

			case Stats:
				msg.Reply <- len(h.rooms[msg.RoomID])

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) broadcast(roomID string, evt types.Event) {
	for id, ch := range h.rooms[roomID] {
		select {
		case ch <- evt:
			// ok
		default:
			// Client is slow/full - drop them.
			h.log.Warn("dropping slow client",
				zap.String("room_id", roomID),
				zap.String("client_id", id))
			h.detach(roomID, id)
		}
	}
}

func (h *Hub) detach(roomID, clientID string) {
	clients := h.rooms[roomID]
	if ch, ok := clients[clientID]; ok {
		close(ch) // tell the client no more events
		delete(clients, clientID)
	}
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) shutdown() {
	for roomID, clients := range h.rooms {
		for id, ch := range clients {
			close(ch)
			delete(clients, id)
		}
		delete(h.rooms, roomID)
	}
	h.cancel()
}
