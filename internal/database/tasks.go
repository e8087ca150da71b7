package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/task-planner/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger used for repository diagnostics
func (r *TaskRepository) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Create inserts a new task. The position is assigned inside the insert:
// one past the current maximum for the owner, or 0 for the owner's first task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, text, completed, priority, due_date, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE user_id = $2),
			$7, $7)
		RETURNING position, created_at, updated_at
	`

	var dueDate sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		task.Priority,
		dueDate,
		now,
	).Scan(&task.Position, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID, scoped to the owning user.
// A task owned by someone else is indistinguishable from a missing one.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	var dueDate sql.NullTime

	query := `
		SELECT id, user_id, text, completed, priority, due_date, position, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&task.Priority,
		&dueDate,
		&task.Position,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}

// GetByUserID retrieves all tasks for a user ordered by position, with
// creation time breaking ties. This ordering is the contract the client
// relies on for manual reordering.
func (r *TaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	query := `
		SELECT id, user_id, text, completed, priority, due_date, position, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task := &models.Task{}
		var dueDate sql.NullTime

		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Text,
			&task.Completed,
			&task.Priority,
			&dueDate,
			&task.Position,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if dueDate.Valid {
			task.DueDate = &dueDate.Time
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update writes the full task row back, scoped to the owning user
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET text = $3, completed = $4, priority = $5, due_date = $6, position = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	var dueDate sql.NullTime
	if task.DueDate != nil {
		dueDate = sql.NullTime{Time: *task.DueDate, Valid: true}
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		task.Priority,
		dueDate,
		task.Position,
		now,
	).Scan(&task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task by ID, scoped to the owning user
func (r *TaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// PositionUpdate is one (task, position) assignment in a reorder batch
type PositionUpdate struct {
	ID       uuid.UUID
	Position int
}

// UpdatePositions applies each position assignment independently, scoped to
// the owning user. Entries referencing tasks the user does not own match no
// rows and are skipped without error. Position is advisory, so the batch is
// deliberately not transactional: partial application is tolerated.
func (r *TaskRepository) UpdatePositions(ctx context.Context, userID uuid.UUID, updates []PositionUpdate) error {
	query := `UPDATE tasks SET position = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`

	now := time.Now()
	for _, u := range updates {
		result, err := r.db.ExecContext(ctx, query, u.ID, userID, u.Position, now)
		if err != nil {
			return fmt.Errorf("failed to update task position: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			r.logger.Debug("reorder_entry_skipped",
				zap.String("task_id", u.ID.String()),
				zap.String("user_id", userID.String()),
			)
		}
	}

	return nil
}
