package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/task-planner/internal/database"
	"github.com/benvon/task-planner/internal/models"
	"github.com/benvon/task-planner/internal/request"
	"github.com/benvon/task-planner/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// MaxTaskTextLength is the maximum length for task text
	MaxTaskTextLength = 10000
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
	logger   *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{taskRepo: taskRepo, logger: logger}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/reorder", h.ReorderTasks).Methods("PUT")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
}

// CreateTaskRequest represents a create task request. Any completed value a
// client tries to send is ignored: new tasks always start incomplete.
type CreateTaskRequest struct {
	Text     string `json:"text" validate:"required,max=10000"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. Pointer fields and
// OptionalString record which keys were present in the body.
type UpdateTaskRequest struct {
	Text      *string        `json:"text"`
	Completed *bool          `json:"completed"`
	Priority  *string        `json:"priority"`
	DueDate   OptionalString `json:"dueDate"`
	Position  *float64       `json:"position"`
}

// ReorderEntry is one (id, position) assignment in a reorder request
type ReorderEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// ListTasks lists the authenticated user's tasks ordered by position,
// creation time breaking ties
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	tasks, err := h.taskRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_list_tasks", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a new task for the authenticated user
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required and cannot be empty")
		return
	}
	if len(req.Text) > MaxTaskTextLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Text exceeds maximum length of %d characters", MaxTaskTextLength))
		return
	}

	task := &models.Task{
		ID:       uuid.New(),
		UserID:   user.ID,
		Text:     req.Text,
		Priority: validation.NormalizePriority(req.Priority),
		DueDate:  parseDueDate(req.DueDate),
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		h.logger.Error("failed_to_create_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to an existing task. A body that
// supplies none of the known fields flips the completed flag instead; older
// clients toggle completion by sending an empty object.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	ctx := r.Context()
	task, err := h.taskRepo.GetByID(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		h.logger.Error("failed_to_get_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve task")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	supplied := false

	if req.Text != nil {
		supplied = true
		if sanitized := validation.SanitizeText(*req.Text); sanitized != "" && len(sanitized) <= MaxTaskTextLength {
			task.Text = sanitized
		}
	}
	if req.Completed != nil {
		supplied = true
		task.Completed = *req.Completed
	}
	if req.Priority != nil {
		supplied = true
		// Unknown priority values are ignored, not errored
		if p := models.Priority(*req.Priority); p.Valid() {
			task.Priority = p
		}
	}
	if req.DueDate.Set {
		supplied = true
		if !req.DueDate.Valid || req.DueDate.Value == "" {
			task.DueDate = nil
		} else {
			task.DueDate = parseDueDate(req.DueDate.Value)
		}
	}
	if req.Position != nil {
		supplied = true
		task.Position = int(*req.Position)
	}

	// Legacy toggle shortcut: an empty update flips completion
	if !supplied {
		task.Completed = !task.Completed
	}

	if err := h.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		h.logger.Error("failed_to_update_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task owned by the authenticated user
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	if err := h.taskRepo.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		h.logger.Error("failed_to_delete_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}

// ReorderTasks applies a batch of position assignments. Entries referencing
// tasks the caller does not own are skipped silently; position is advisory
// and a partially applied batch heals on the next list.
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var entries []ReorderEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Request body must be an array of {id, position} entries")
		return
	}
	// A literal null decodes into a nil slice without error; it is still
	// not an array
	if entries == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Request body must be an array of {id, position} entries")
		return
	}

	updates := make([]database.PositionUpdate, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			// Unparseable ids get the same silent treatment as foreign ones
			continue
		}
		updates = append(updates, database.PositionUpdate{ID: id, Position: e.Position})
	}

	if err := h.taskRepo.UpdatePositions(r.Context(), user.ID, updates); err != nil {
		h.logger.Error("failed_to_reorder_tasks", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to reorder tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
