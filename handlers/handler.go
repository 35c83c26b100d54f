package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rajangupta9/taskflow/generator"
	"github.com/Rajangupta9/taskflow/repository"
	"github.com/Rajangupta9/taskflow/sessions"
	"github.com/Rajangupta9/taskflow/utils"
)

const maxBodyBytes = 1 << 20

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	Repo      repository.Repository
	JWT       *utils.JWT
	Revoked   sessions.Revoker
	Generator generator.Generator
	Now       func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) today() time.Time {
	n := h.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// storageError maps repository errors onto status codes. Unexpected errors
// are logged and reported as 500 with a generic message.
func storageError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.ResponseWithError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrConflict):
		utils.ResponseWithError(w, http.StatusConflict, what+" already exists")
	default:
		slog.Error("storage failure", "what", what, "error", err)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Database error")
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "ok"})
}
