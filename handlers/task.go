package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Rajangupta9/taskflow/middleware"
	"github.com/Rajangupta9/taskflow/models"
	"github.com/Rajangupta9/taskflow/utils"
)

func (h *Handler) ListAllTask(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Repo.ListTasks(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		storageError(w, err, "Task")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.Repo.GetTask(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		storageError(w, err, "Task")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, task)
}

// readTasks accepts either a single task object or an array of them.
func readTasks(w http.ResponseWriter, r *http.Request) (tasks []models.Task, batch bool, err error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, false, err
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		err = json.Unmarshal(body, &tasks)
		return tasks, true, err
	}
	var t models.Task
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, false, err
	}
	return []models.Task{t}, false, nil
}

// CreateTask stores one task or a whole batch. A batch is validated up
// front and inserted in one call, so it lands completely or not at all.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	tasks, batch, err := readTasks(w, r)
	if err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if len(tasks) == 0 {
		utils.ResponseWithError(w, http.StatusBadRequest, "no tasks provided")
		return
	}

	userID := middleware.UserID(r.Context())
	today := models.FormatDate(h.today())
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			t.ID = models.NewTaskID()
		}
		if t.Status == "" {
			t.Status = models.StatusTodo
		}
		if t.Date == "" {
			t.Date = today
		}
		t.Date = models.CalendarDate(t.Date)
		t.UserID = userID
		if err := t.Validate(); err != nil {
			msg := err.Error()
			if batch {
				msg = fmt.Sprintf("task %d: %s", i, msg)
			}
			utils.ResponseWithError(w, http.StatusBadRequest, msg)
			return
		}
	}

	if err := h.Repo.CreateTasks(r.Context(), userID, tasks); err != nil {
		storageError(w, err, "Task")
		return
	}

	created := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		stored, err := h.Repo.GetTask(r.Context(), userID, t.ID)
		if err != nil {
			storageError(w, err, "Task")
			return
		}
		created = append(created, *stored)
	}
	if batch {
		utils.ResponseWithJson(w, http.StatusCreated, created)
		return
	}
	utils.ResponseWithJson(w, http.StatusCreated, created[0])
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decode(w, r, &patch); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if patch.Date != nil {
		d := models.CalendarDate(*patch.Date)
		patch.Date = &d
	}

	userID := middleware.UserID(r.Context())
	id := r.PathValue("id")
	current, err := h.Repo.GetTask(r.Context(), userID, id)
	if err != nil {
		storageError(w, err, "Task")
		return
	}
	if err := patch.Validate(*current); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Repo.UpdateTask(r.Context(), userID, id, patch)
	if err != nil {
		storageError(w, err, "Task")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteTask(r.Context(), middleware.UserID(r.Context()), r.PathValue("id")); err != nil {
		storageError(w, err, "Task")
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "deleted"})
}
