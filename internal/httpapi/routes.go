package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sprintdeck/sprintdeck/internal/ws"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.healthz)
	r.Get("/ws", ws.Handler(s.engine, s.hub, s.log))

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", s.createRoom)
		r.Route("/{roomID}", func(r chi.Router) {
			r.Get("/", s.getSnapshot)
			r.Delete("/", s.deleteRoom)
			r.Patch("/", s.updateRoomSettings)

			r.Post("/join", s.join)
			r.Post("/leave", s.leave)
			r.Post("/kick", s.kick)
			r.Post("/transfer-ownership", s.transferOwnership)
			r.Post("/react", s.react)
			r.Patch("/members/{memberID}", s.updateMember)

			r.Post("/votes", s.castVote)
			r.Delete("/votes/{memberID}", s.clearVote)
			r.Post("/reveal", s.reveal)
			r.Post("/reset", s.reset)

			r.Put("/objects/{objectID}", s.upsertObject)
			r.Get("/objects", s.listObjects)
			r.Delete("/objects/{objectID}", s.deleteObject)
			r.Post("/timer/start", s.startTimer)
			r.Post("/timer/pause", s.pauseTimer)

			r.Post("/presence", s.ping)
			r.Get("/presence", s.listPresence)
			r.Get("/activities", s.listActivities)
		})
	})

	return r
}
