package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/task-planner/internal/database"
	"github.com/benvon/task-planner/internal/models"
	"github.com/benvon/task-planner/internal/request"
	"github.com/benvon/task-planner/internal/services/credentials"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tokens, err := credentials.NewTokenService("test-secret", "task-planner", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	user := &models.User{ID: uuid.New(), Username: "alice"}
	repo := &fakeUserRepo{users: map[uuid.UUID]*models.User{user.ID: user}}

	validToken, err := tokens.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	orphanToken, err := tokens.Issue(uuid.New(), "ghost")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		wantStatus     int
		wantUserInCtx  bool
	}{
		{"valid token", "Bearer " + validToken, http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"malformed header", "Basic abc", http.StatusUnauthorized, false},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, false},
		{"token for deleted user", "Bearer " + orphanToken, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = request.UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(repo, tokens, zap.NewNop())(next)

			req := httptest.NewRequest("GET", "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantUserInCtx {
				if gotUser == nil || gotUser.ID != user.ID {
					t.Errorf("expected user %s in context, got %+v", user.ID, gotUser)
				}
			} else if gotUser != nil {
				t.Errorf("expected no user in context, got %+v", gotUser)
			}
		})
	}
}
