package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/internal/engine"
	"github.com/sprintdeck/sprintdeck/internal/store"
)

// All responses share one envelope: {success, data?, error?}.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// failErr translates the engine's error taxonomy to HTTP statuses. Anything
// outside the taxonomy is an internal failure: logged, reported as 500
// without leaking detail.
func (s *Server) failErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrUnauthorized):
		s.fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrInvalidOperation):
		s.fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("internal error", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
