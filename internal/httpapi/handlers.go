package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/internal/engine"
	"github.com/sprintdeck/sprintdeck/internal/hub"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

type Server struct {
	engine *engine.Engine
	hub    *hub.Hub
	log    *zap.Logger
}

func New(eng *engine.Engine, h *hub.Hub, log *zap.Logger) *Server {
	return &Server{engine: eng, hub: h, log: log}
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string  `json:"name"`
		Password      string  `json:"password,omitempty"`
		ActiveStoryID *string `json:"activeStoryId,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	room, err := s.engine.CreateRoom(r.Context(), req.Name, engine.RoomOptions{
		Password:      req.Password,
		ActiveStoryID: req.ActiveStoryID,
	})
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, room)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.GetSnapshot(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, snap)
}

func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	owner, err := s.engine.IsOwner(r.Context(), roomID, req.MemberID)
	if err != nil {
		s.failErr(w, err)
		return
	}
	if !owner {
		s.failErr(w, engine.ErrNotOwner)
		return
	}
	if err := s.engine.DeleteRoom(r.Context(), roomID); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) updateRoomSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID      string  `json:"memberId"`
		Name          *string `json:"name,omitempty"`
		ActiveStoryID *string `json:"activeStoryId,omitempty"`
		ClearStory    bool    `json:"clearStory,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	room, err := s.engine.UpdateRoomSettings(r.Context(), chi.URLParam(r, "roomID"), req.MemberID, engine.RoomSettings{
		Name:          req.Name,
		ActiveStoryID: req.ActiveStoryID,
		ClearStory:    req.ClearStory,
	})
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, room)
}

func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		IsObserver bool   `json:"isObserver"`
		Password   string `json:"password,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	member, err := s.engine.Join(r.Context(), chi.URLParam(r, "roomID"), req.Name, req.IsObserver, req.Password)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, member)
}

func (s *Server) leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.engine.Leave(r.Context(), req.MemberID); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) kick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KickerID string `json:"kickerId"`
		TargetID string `json:"targetId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.engine.Kick(r.Context(), chi.URLParam(r, "roomID"), req.KickerID, req.TargetID); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) transferOwnership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID    string `json:"ownerId"`
		NewOwnerID string `json:"newOwnerId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.engine.TransferOwnership(r.Context(), chi.URLParam(r, "roomID"), req.OwnerID, req.NewOwnerID); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string `json:"name,omitempty"`
		IsObserver *bool   `json:"isObserver,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	member, err := s.engine.UpdateMember(r.Context(), chi.URLParam(r, "roomID"), chi.URLParam(r, "memberID"), engine.MemberUpdate{
		Name:       req.Name,
		IsObserver: req.IsObserver,
	})
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, member)
}

func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId"`
		Emoji    string `json:"emoji"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := s.engine.React(r.Context(), chi.URLParam(r, "roomID"), req.MemberID, req.Emoji); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string   `json:"memberId"`
		Label    *string  `json:"label"`
		Value    *float64 `json:"value"`
		Icon     *string  `json:"icon"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	vote, err := s.engine.CastVote(r.Context(), chi.URLParam(r, "roomID"), req.MemberID, req.Label, req.Icon, req.Value)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, vote)
}

func (s *Server) clearVote(w http.ResponseWriter, r *http.Request) {
	err := s.engine.ClearVote(r.Context(), chi.URLParam(r, "roomID"), chi.URLParam(r, "memberID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) reveal(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reveal(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) upsertObject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind      string          `json:"kind"`
		Position  types.Position  `json:"position"`
		Payload   json.RawMessage `json:"payload"`
		IsLocked  bool            `json:"isLocked"`
		UpdatedBy string          `json:"updatedBy"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	obj, err := s.engine.UpsertObject(r.Context(), chi.URLParam(r, "roomID"), chi.URLParam(r, "objectID"),
		req.Kind, req.Position, req.Payload, req.IsLocked, req.UpdatedBy)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, obj)
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := s.engine.ListObjects(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, objects)
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	err := s.engine.DeleteObject(r.Context(), chi.URLParam(r, "roomID"), chi.URLParam(r, "objectID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) startTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string   `json:"memberId"`
		Duration *float64 `json:"duration,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	obj, err := s.engine.StartTimer(r.Context(), chi.URLParam(r, "roomID"), req.MemberID, req.Duration)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, obj)
}

func (s *Server) pauseTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	obj, err := s.engine.PauseTimer(r.Context(), chi.URLParam(r, "roomID"), req.MemberID)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, obj)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string          `json:"memberId"`
		Cursor   *types.Position `json:"cursor,omitempty"`
		IsActive *bool           `json:"isActive,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad json")
		return
	}
	presence, err := s.engine.Ping(r.Context(), chi.URLParam(r, "roomID"), req.MemberID, req.Cursor, req.IsActive)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, presence)
}

func (s *Server) listPresence(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.ListActivePresence(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rows)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.Activities(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, rows)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
