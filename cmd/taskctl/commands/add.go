package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/task-planner/internal/models"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	var priority string
	var due string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("task text must not be empty")
			}

			state, _, err := newSessionState(context.Background())
			if err != nil {
				return err
			}

			created, err := state.Add(context.Background(), text, models.Priority(priority), due)
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			fmt.Printf("Added %q (%s, id %s).\n", created.Text, created.Priority, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "P", "Medium", "Priority: High, Medium or Low")
	cmd.Flags().StringVar(&due, "due", "", "Due date (RFC3339, 2006-01-02T15:04 or 2006-01-02)")
	return cmd
}
