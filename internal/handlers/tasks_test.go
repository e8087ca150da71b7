package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/benvon/task-planner/internal/database"
	"github.com/benvon/task-planner/internal/models"
	"github.com/benvon/task-planner/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// fakeTaskRepo is an in-memory TaskRepositoryInterface for handler tests
type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
	seq   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	maxPos := -1
	for _, t := range f.tasks {
		if t.UserID == task.UserID && t.Position > maxPos {
			maxPos = t.Position
		}
	}
	task.Position = maxPos + 1
	f.seq++
	task.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	task.UpdatedAt = task.CreatedAt
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, database.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	out := []*models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	existing, ok := f.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return database.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	copied := *task
	copied.CreatedAt = existing.CreatedAt
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return database.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) UpdatePositions(ctx context.Context, userID uuid.UUID, updates []database.PositionUpdate) error {
	for _, u := range updates {
		if t, ok := f.tasks[u.ID]; ok && t.UserID == userID {
			t.Position = u.Position
		}
	}
	return nil
}

func newTaskRouter(repo *fakeTaskRepo) *mux.Router {
	r := mux.NewRouter()
	NewTaskHandler(repo, nil).RegisterRoutes(r.PathPrefix("/tasks").Subrouter())
	return r
}

func doTaskRequest(t *testing.T, router *mux.Router, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != nil {
		req = req.WithContext(request.WithUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Defaults(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	// Seed an existing task so position assignment is visible
	seed := &models.Task{ID: uuid.New(), UserID: user.ID, Text: "existing", Priority: models.PriorityLow}
	if err := repo.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doTaskRequest(t, router, user, "POST", "/tasks", map[string]any{"text": "Buy milk"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if task.Priority != models.PriorityMedium {
		t.Errorf("expected priority Medium, got %s", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("expected nil due date, got %v", task.DueDate)
	}
	if task.Completed {
		t.Error("expected completed=false")
	}
	if task.Position != seed.Position+1 {
		t.Errorf("expected position %d, got %d", seed.Position+1, task.Position)
	}
}

func TestCreateTask_CompletedInjectionIgnored(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	router := newTaskRouter(newFakeTaskRepo())

	w := doTaskRequest(t, router, user, "POST", "/tasks", `{"text":"sneaky","completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.Completed {
		t.Error("clients must not be able to create a pre-completed task")
	}
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     any
		wantCode int
	}{
		{"empty text", map[string]any{"text": ""}, http.StatusBadRequest},
		{"whitespace text", map[string]any{"text": "   "}, http.StatusBadRequest},
		{"missing text", map[string]any{"priority": "High"}, http.StatusBadRequest},
		{"malformed body", `{not json`, http.StatusBadRequest},
		{"valid", map[string]any{"text": "ok"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := &models.User{ID: uuid.New(), Username: "alice"}
			router := newTaskRouter(newFakeTaskRepo())

			w := doTaskRequest(t, router, user, "POST", "/tasks", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateTask_DueDateParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dueDate string
		wantNil bool
	}{
		{"rfc3339", "2024-03-20T15:00:00Z", false},
		{"datetime-local", "2024-03-20T15:00", false},
		{"date only", "2024-03-20", false},
		{"empty", "", true},
		{"unparseable", "next tuesday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := &models.User{ID: uuid.New(), Username: "alice"}
			router := newTaskRouter(newFakeTaskRepo())

			w := doTaskRequest(t, router, user, "POST", "/tasks", map[string]any{"text": "task", "dueDate": tt.dueDate})
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}

			var task models.Task
			if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.wantNil && task.DueDate != nil {
				t.Errorf("expected nil due date, got %v", task.DueDate)
			}
			if !tt.wantNil && task.DueDate == nil {
				t.Error("expected due date to be set")
			}
		})
	}
}

func TestCreateTask_InvalidPriorityFallsBackToMedium(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	router := newTaskRouter(newFakeTaskRepo())

	w := doTaskRequest(t, router, user, "POST", "/tasks", map[string]any{"text": "task", "priority": "Urgent"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("expected Medium fallback, got %s", task.Priority)
	}
}

func TestUpdateTask_EmptyBodyTogglesCompleted(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	task := &models.Task{ID: uuid.New(), UserID: user.ID, Text: "toggle me", Priority: models.PriorityMedium}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doTaskRequest(t, router, user, "PUT", "/tasks/"+task.ID.String(), `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !updated.Completed {
		t.Error("expected empty update to flip completed to true")
	}

	// A second empty update flips it back
	w = doTaskRequest(t, router, user, "PUT", "/tasks/"+task.ID.String(), `{}`)
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Completed {
		t.Error("expected second empty update to flip completed back to false")
	}
}

func TestUpdateTask_FieldRules(t *testing.T) {
	t.Parallel()

	due := "2024-03-20T15:00:00Z"

	tests := []struct {
		name     string
		body     string
		validate func(*testing.T, *models.Task)
	}{
		{
			name: "invalid priority enum leaves priority unchanged",
			body: `{"priority":"Urgent"}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.Priority != models.PriorityMedium {
					t.Errorf("expected priority unchanged (Medium), got %s", task.Priority)
				}
				if task.Completed {
					t.Error("a supplied-but-invalid field must not trigger the toggle")
				}
			},
		},
		{
			name: "valid priority applied",
			body: `{"priority":"High"}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.Priority != models.PriorityHigh {
					t.Errorf("expected High, got %s", task.Priority)
				}
			},
		},
		{
			name: "empty text ignored but counts as supplied",
			body: `{"text":"  "}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.Text != "original" {
					t.Errorf("expected text unchanged, got %q", task.Text)
				}
				if task.Completed {
					t.Error("toggle must not fire when a field key was supplied")
				}
			},
		},
		{
			name: "explicit null clears due date",
			body: `{"dueDate":null}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.DueDate != nil {
					t.Errorf("expected due date cleared, got %v", task.DueDate)
				}
			},
		},
		{
			name: "empty string clears due date",
			body: `{"dueDate":""}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.DueDate != nil {
					t.Errorf("expected due date cleared, got %v", task.DueDate)
				}
			},
		},
		{
			name: "unparseable due date stored as null",
			body: `{"dueDate":"whenever"}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.DueDate != nil {
					t.Errorf("expected nil due date, got %v", task.DueDate)
				}
			},
		},
		{
			name: "position applied",
			body: `{"position":7}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.Position != 7 {
					t.Errorf("expected position 7, got %d", task.Position)
				}
			},
		},
		{
			name: "completed false applied explicitly",
			body: `{"completed":false}`,
			validate: func(t *testing.T, task *models.Task) {
				if task.Completed {
					t.Error("expected completed=false to be applied, not toggled")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := &models.User{ID: uuid.New(), Username: "alice"}
			repo := newFakeTaskRepo()
			router := newTaskRouter(repo)

			seedDue, _ := time.Parse(time.RFC3339, due)
			task := &models.Task{
				ID:       uuid.New(),
				UserID:   user.ID,
				Text:     "original",
				Priority: models.PriorityMedium,
				DueDate:  &seedDue,
			}
			if err := repo.Create(context.Background(), task); err != nil {
				t.Fatalf("seed: %v", err)
			}

			w := doTaskRequest(t, router, user, "PUT", "/tasks/"+task.ID.String(), tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var updated models.Task
			if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
				t.Fatalf("decode: %v", err)
			}
			tt.validate(t, &updated)
		})
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	other := &models.User{ID: uuid.New(), Username: "mallory"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	task := &models.Task{ID: uuid.New(), UserID: user.ID, Text: "mine", Priority: models.PriorityMedium}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Unknown id
	w := doTaskRequest(t, router, user, "PUT", "/tasks/"+uuid.NewString(), `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}

	// Someone else's task looks exactly like a missing one
	w = doTaskRequest(t, router, other, "PUT", "/tasks/"+task.ID.String(), `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign task, got %d", w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	task := &models.Task{ID: uuid.New(), UserID: user.ID, Text: "doomed", Priority: models.PriorityMedium}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doTaskRequest(t, router, user, "DELETE", "/tasks/"+task.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != task.ID.String() {
		t.Errorf("expected deleted id %s, got %s", task.ID, body["id"])
	}

	// Deleting again is a clean 404
	w = doTaskRequest(t, router, user, "DELETE", "/tasks/"+task.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestReorderTasks(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	// Seed [A, B, C]
	ids := make([]uuid.UUID, 3)
	for i, text := range []string{"A", "B", "C"} {
		task := &models.Task{ID: uuid.New(), UserID: user.ID, Text: text, Priority: models.PriorityMedium}
		if err := repo.Create(context.Background(), task); err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids[i] = task.ID
	}

	// Drag C to the front: [C, A, B]
	entries := []map[string]any{
		{"id": ids[2].String(), "position": 0},
		{"id": ids[0].String(), "position": 1},
		{"id": ids[1].String(), "position": 2},
	}

	w := doTaskRequest(t, router, user, "PUT", "/tasks/reorder", entries)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doTaskRequest(t, router, user, "GET", "/tasks", nil)
	var tasks []models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := []string{tasks[0].Text, tasks[1].Text, tasks[2].Text}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestReorderTasks_NonArrayBody(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	router := newTaskRouter(newFakeTaskRepo())

	for _, body := range []string{`{"order":[]}`, `null`, `"[]"`, `42`} {
		w := doTaskRequest(t, router, user, "PUT", "/tasks/reorder", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400 for non-array body, got %d", body, w.Code)
		}
	}
}

func TestReorderTasks_ForeignIDsSkipped(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	other := &models.User{ID: uuid.New(), Username: "mallory"}
	repo := newFakeTaskRepo()
	router := newTaskRouter(repo)

	mine := &models.Task{ID: uuid.New(), UserID: user.ID, Text: "mine", Priority: models.PriorityMedium}
	theirs := &models.Task{ID: uuid.New(), UserID: other.ID, Text: "theirs", Priority: models.PriorityMedium}
	for _, task := range []*models.Task{mine, theirs} {
		if err := repo.Create(context.Background(), task); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	entries := []map[string]any{
		{"id": mine.ID.String(), "position": 5},
		{"id": theirs.ID.String(), "position": 9},
		{"id": "not-a-uuid", "position": 1},
	}

	w := doTaskRequest(t, router, user, "PUT", "/tasks/reorder", entries)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite foreign entries, got %d", w.Code)
	}

	if repo.tasks[mine.ID].Position != 5 {
		t.Errorf("expected own task moved to 5, got %d", repo.tasks[mine.ID].Position)
	}
	if repo.tasks[theirs.ID].Position != 0 {
		t.Errorf("expected foreign task untouched, got %d", repo.tasks[theirs.ID].Position)
	}
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	router := newTaskRouter(newFakeTaskRepo())

	w := doTaskRequest(t, router, user, "GET", "/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := bytes.TrimSpace(w.Body.Bytes())
	if string(body) != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}
