package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benvon/task-planner/internal/models"
)

// NewMoveCmd creates the move command.
func NewMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a task to a new position in the list",
		Long:  "Move a task to the given 1-based position. The new order is applied locally first and then sent to the server.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			target, err := strconv.Atoi(args[1])
			if err != nil || target < 1 {
				return fmt.Errorf("position must be a positive number, got %q", args[1])
			}

			ctx := context.Background()
			state, _, err := newSessionState(ctx)
			if err != nil {
				return err
			}

			tasks := state.Tasks()
			var moved *models.Task
			rest := make([]models.Task, 0, len(tasks))
			for _, t := range tasks {
				if t.ID == id {
					moved = &t
					continue
				}
				rest = append(rest, t)
			}
			if moved == nil {
				return fmt.Errorf("no task with id %s", id)
			}

			idx := target - 1
			if idx > len(rest) {
				idx = len(rest)
			}
			order := make([]models.Task, 0, len(tasks))
			order = append(order, rest[:idx]...)
			order = append(order, *moved)
			order = append(order, rest[idx:]...)

			if err := state.Reorder(ctx, order); err != nil {
				return fmt.Errorf("reorder tasks: %w", err)
			}
			fmt.Printf("Moved %q to position %d.\n", moved.Text, idx+1)
			return nil
		},
	}
}
