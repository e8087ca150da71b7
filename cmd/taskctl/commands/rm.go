package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRmCmd creates the rm command.
func NewRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			ctx := context.Background()
			state, _, err := newSessionState(ctx)
			if err != nil {
				return err
			}

			if err := state.Delete(ctx, id); err != nil {
				return fmt.Errorf("remove task: %w", err)
			}
			fmt.Printf("Removed %s.\n", id)
			return nil
		},
	}
}
