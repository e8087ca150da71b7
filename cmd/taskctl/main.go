package main

import (
	"fmt"
	"os"

	"github.com/benvon/task-planner/cmd/taskctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Command-line client for the task planner API",
		Long:  "Manage your task list from the terminal: log in, list by view, add, toggle, remove and reorder tasks.",
	}

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewAddCmd())
	rootCmd.AddCommand(commands.NewToggleCmd())
	rootCmd.AddCommand(commands.NewRmCmd())
	rootCmd.AddCommand(commands.NewMoveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
