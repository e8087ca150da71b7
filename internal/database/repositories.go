package database

import (
	"context"

	"github.com/benvon/task-planner/internal/models"
	"github.com/google/uuid"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UpdatePositions(ctx context.Context, userID uuid.UUID, updates []PositionUpdate) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface = (*TaskRepository)(nil)
	_ UserRepositoryInterface = (*UserRepository)(nil)
)
