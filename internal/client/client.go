// Package client maintains a local mirror of a user's task list against the
// REST backend. TaskState is designed for single-goroutine cooperative use
// (a CLI loop or a UI event loop); it does no internal locking.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/task-planner/internal/models"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// The logout handler, if any, has already been invoked by the time the
// caller sees this error.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotCached is returned by Update when the target task is not in the
// local mirror.
var ErrNotCached = errors.New("task not in local state")

// TaskState mirrors the server-side task list for one authenticated user.
type TaskState struct {
	baseURL  string
	httpc    *http.Client
	logger   *zap.Logger
	onLogout func()

	token   string
	tasks   []models.Task
	loading bool
}

// Option configures a TaskState.
type Option func(*TaskState)

// WithHTTPClient overrides the transport. The default http.Client relies on
// transport-level defaults; per-operation deadlines come from the caller's
// context.
func WithHTTPClient(c *http.Client) Option {
	return func(s *TaskState) { s.httpc = c }
}

// WithLogger attaches a logger for request-level debug events.
func WithLogger(l *zap.Logger) Option {
	return func(s *TaskState) { s.logger = l }
}

// WithLogoutHandler registers the callback invoked whenever any operation
// receives a 401 or 403. This is the only cross-cutting recovery policy;
// every other failure is reported to the caller and otherwise ignored.
func WithLogoutHandler(fn func()) Option {
	return func(s *TaskState) { s.onLogout = fn }
}

// New returns an empty TaskState pointed at the given API base URL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *TaskState {
	s := &TaskState{
		baseURL: baseURL,
		httpc:   &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns the current local mirror. The slice is shared; callers must
// not mutate it.
func (s *TaskState) Tasks() []models.Task { return s.tasks }

// Loading reports whether a Refresh is in flight.
func (s *TaskState) Loading() bool { return s.loading }

// Token returns the current bearer token, empty when logged out.
func (s *TaskState) Token() string { return s.token }

// SetToken stores the bearer token and refreshes the mirror. An empty token
// clears the mirror without a network call.
func (s *TaskState) SetToken(ctx context.Context, token string) error {
	s.token = token
	return s.Refresh(ctx)
}

// Refresh replaces the local mirror wholesale with the server's task list.
// Without a token it clears the mirror and returns nil. Any failure also
// clears the mirror: a refresh never leaves stale tasks behind.
func (s *TaskState) Refresh(ctx context.Context) error {
	if s.token == "" {
		s.tasks = nil
		s.loading = false
		return nil
	}

	s.loading = true
	defer func() { s.loading = false }()

	resp, err := s.do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		s.tasks = []models.Task{}
		return err
	}
	defer resp.Body.Close()

	if err := s.checkAuth(resp.StatusCode); err != nil {
		s.tasks = []models.Task{}
		return err
	}
	if resp.StatusCode != http.StatusOK {
		s.tasks = []models.Task{}
		return fmt.Errorf("list tasks: unexpected status %d", resp.StatusCode)
	}

	var tasks []models.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		s.tasks = []models.Task{}
		return fmt.Errorf("decode task list: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.tasks = tasks
	s.logger.Debug("tasks_refreshed", zap.Int("count", len(tasks)))
	return nil
}

type addPayload struct {
	Text     string `json:"text"`
	Priority string `json:"priority,omitempty"`
	DueDate  string `json:"dueDate,omitempty"`
}

// Add creates a task and appends the server's version to the tail of the
// mirror. The mirror is untouched on failure, so callers can keep their
// input intact until Add succeeds.
func (s *TaskState) Add(ctx context.Context, text string, priority models.Priority, dueDate string) (models.Task, error) {
	body := addPayload{Text: text, Priority: string(priority), DueDate: dueDate}
	resp, err := s.do(ctx, http.MethodPost, "/tasks", body)
	if err != nil {
		return models.Task{}, err
	}
	defer resp.Body.Close()

	if err := s.checkAuth(resp.StatusCode); err != nil {
		return models.Task{}, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.Task{}, fmt.Errorf("add task: unexpected status %d", resp.StatusCode)
	}

	var created models.Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	s.tasks = append(s.tasks, created)
	s.logger.Debug("task_added", zap.String("id", created.ID.String()))
	return created, nil
}

// Changes describes an update to one task. Nil fields keep the cached
// value. DueDate is applied only when SetDueDate is true; a nil DueDate
// with SetDueDate clears the date.
type Changes struct {
	Text       *string
	Priority   *models.Priority
	Completed  *bool
	DueDate    *time.Time
	SetDueDate bool
}

type updatePayload struct {
	Text      string     `json:"text"`
	Priority  string     `json:"priority"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate"`
}

// Update sends a complete payload built from the cached task merged with
// the requested changes, then folds the server's response back into the
// mirror. On failure the mirror is untouched.
func (s *TaskState) Update(ctx context.Context, id uuid.UUID, changes Changes) error {
	cached, ok := s.find(id)
	if !ok {
		return ErrNotCached
	}

	payload := updatePayload{
		Text:      cached.Text,
		Priority:  string(cached.Priority),
		Completed: cached.Completed,
		DueDate:   cached.DueDate,
	}
	if changes.Text != nil {
		payload.Text = *changes.Text
	}
	if changes.Priority != nil {
		payload.Priority = string(*changes.Priority)
	}
	if changes.Completed != nil {
		payload.Completed = *changes.Completed
	}
	if changes.SetDueDate {
		payload.DueDate = changes.DueDate
	}

	resp, err := s.do(ctx, http.MethodPut, "/tasks/"+id.String(), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := s.checkAuth(resp.StatusCode); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update task: unexpected status %d", resp.StatusCode)
	}

	var updated models.Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return fmt.Errorf("decode updated task: %w", err)
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = updated
			break
		}
	}
	s.logger.Debug("task_updated", zap.String("id", id.String()))
	return nil
}

// Toggle flips the cached completion flag through Update.
func (s *TaskState) Toggle(ctx context.Context, id uuid.UUID) error {
	cached, ok := s.find(id)
	if !ok {
		return ErrNotCached
	}
	flipped := !cached.Completed
	return s.Update(ctx, id, Changes{Completed: &flipped})
}

// Delete removes the task on the server, then from the mirror. The mirror
// is untouched on failure.
func (s *TaskState) Delete(ctx context.Context, id uuid.UUID) error {
	resp, err := s.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := s.checkAuth(resp.StatusCode); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete task: unexpected status %d", resp.StatusCode)
	}

	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.logger.Debug("task_deleted", zap.String("id", id.String()))
	return nil
}

type reorderEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Reorder replaces the mirror with the given order immediately, then tells
// the server the new positions (array index). There is no rollback on
// failure; any divergence heals on the next Refresh.
func (s *TaskState) Reorder(ctx context.Context, order []models.Task) error {
	s.tasks = make([]models.Task, len(order))
	copy(s.tasks, order)

	payload := make([]reorderEntry, len(order))
	for i, t := range order {
		payload[i] = reorderEntry{ID: t.ID.String(), Position: i}
	}

	resp, err := s.do(ctx, http.MethodPut, "/tasks/reorder", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := s.checkAuth(resp.StatusCode); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reorder tasks: unexpected status %d", resp.StatusCode)
	}
	s.logger.Debug("tasks_reordered", zap.Int("count", len(order)))
	return nil
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token, stores it, and refreshes the
// mirror.
func (s *TaskState) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "/auth/login", username, password)
}

// Register creates an account, stores the returned token, and refreshes
// the mirror.
func (s *TaskState) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "/auth/register", username, password)
}

func (s *TaskState) authenticate(ctx context.Context, path, username, password string) error {
	resp, err := s.do(ctx, http.MethodPost, path, credentialsPayload{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("authenticate: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	return s.SetToken(ctx, tr.Token)
}

func (s *TaskState) find(id uuid.UUID) (models.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// checkAuth maps 401/403 to ErrUnauthorized and fires the logout handler.
func (s *TaskState) checkAuth(status int) error {
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return nil
	}
	s.logger.Debug("session_rejected", zap.Int("status", status))
	if s.onLogout != nil {
		s.onLogout()
	}
	return ErrUnauthorized
}

func (s *TaskState) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
