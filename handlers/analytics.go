package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rajangupta9/taskflow/analytics"
	"github.com/Rajangupta9/taskflow/generator"
	"github.com/Rajangupta9/taskflow/middleware"
	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/utils"
)

// Analytics summarises the caller's tasks as of ?date= (default today).
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	ref := h.today()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := models.ParseDate(d)
		if err != nil {
			utils.ResponseWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	tasks, err := h.Repo.ListTasks(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		storageError(w, err, "Task")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, analytics.Summarize(tasks, ref))
}

type GenerateRequest struct {
	Goal string `json:"goal"`
	Date string `json:"date,omitempty"`
}

// GenerateTasks asks the model for proposals and returns them with ids and
// date filled in. Nothing is stored.
func (h *Handler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decode(w, r, &req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		utils.ResponseWithError(w, http.StatusBadRequest, "goal is required")
		return
	}
	date := h.today()
	if req.Date != "" {
		parsed, err := models.ParseDate(req.Date)
		if err != nil {
			utils.ResponseWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if h.Generator == nil {
		utils.ResponseWithError(w, http.StatusBadGateway, "Failed to generate tasks")
		return
	}
	proposals, err := h.Generator.Generate(r.Context(), req.Goal, date)
	if err != nil {
		slog.Error("task generation failed", "error", err)
		utils.ResponseWithError(w, http.StatusBadGateway, "Failed to generate tasks")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, generator.Materialize(proposals, date))
}
