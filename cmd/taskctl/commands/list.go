package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/task-planner/internal/views"
)

var tabNames = map[string]views.Tab{
	"inbox":     views.TabInbox,
	"today":     views.TabToday,
	"upcoming":  views.TabUpcoming,
	"important": views.TabImportant,
	"overdue":   views.TabOverdue,
}

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a view",
		Long:  "List tasks, optionally filtered by view: inbox, today, upcoming, important or overdue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, ok := tabNames[strings.ToLower(tab)]
			if !ok {
				return fmt.Errorf("unknown view %q (want inbox, today, upcoming, important or overdue)", tab)
			}

			state, _, err := newSessionState(context.Background())
			if err != nil {
				return err
			}

			visible := views.Filter(state.Tasks(), selected, time.Now())
			if len(visible) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			for i, t := range visible {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				due := ""
				if t.DueDate != nil {
					due = "  due " + t.DueDate.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("%2d. [%s] %-8s %s%s\n", i+1, mark, t.Priority, t.Text, due)
				fmt.Printf("      id %s\n", t.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "inbox", "View to show: inbox, today, upcoming, important, overdue")
	return cmd
}
