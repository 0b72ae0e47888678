// Package ws serves the per-room event feed over websocket. Each connection
// subscribes to the broadcast hub, receives the current snapshot, then gets
// every event for the room until it detaches. Upstream traffic is limited to
// presence pings.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/internal/engine"
	"github.com/sprintdeck/sprintdeck/internal/hub"
	wire "github.com/sprintdeck/sprintdeck/internal/types"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 60 * time.Second
)

func Handler(eng *engine.Engine, h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		memberID := r.URL.Query().Get("member")
		if roomID == "" {
			http.Error(w, "missing room", http.StatusBadRequest)
			return
		}

		snap, err := eng.GetSnapshot(r.Context(), roomID)
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.Event, 16)
		clientID := uuid.NewString()

		h.Inbox() <- hub.Subscribe{RoomID: roomID, ClientID: clientID, Outbox: out}
		defer func() {
			h.Inbox() <- hub.Unsubscribe{RoomID: roomID, ClientID: clientID}
			if memberID != "" {
				if err := eng.MarkInactive(context.Background(), roomID, memberID); err != nil {
					log.Warn("mark inactive on detach failed",
						zap.String("room_id", roomID),
						zap.String("member_id", memberID),
						zap.Error(err))
				}
			}
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()

		// Writer goroutine: snapshot first, then the event stream.
		go func() {
			write := func(msg wire.ServerMessage) {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			write(wire.ServerMessage{Type: "Snapshot", Payload: snap})
			for evt := range out {
				write(wire.ServerMessage{Type: evt.Name, Payload: evt.Payload})
			}
		}()

		// Reader loop: presence pings only.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm wire.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			switch cm.Type {
			case "Ping":
				if memberID == "" {
					continue
				}
				if _, err := eng.Ping(r.Context(), roomID, memberID, cm.Cursor, cm.IsActive); err != nil {
					log.Warn("ws ping failed",
						zap.String("room_id", roomID),
						zap.String("member_id", memberID),
						zap.Error(err))
				}
			default:
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
			}
		}
	}
}
