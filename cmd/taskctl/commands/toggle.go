package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewToggleCmd creates the toggle command.
func NewToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task's completion state",
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

			if err := state.Toggle(ctx, id); err != nil {
				return fmt.Errorf("toggle task: %w", err)
			}
			for _, t := range state.Tasks() {
				if t.ID == id {
					status := "open"
					if t.Completed {
						status = "done"
					}
					fmt.Printf("%q is now %s.\n", t.Text, status)
					break
				}
			}
			return nil
		},
	}
}
