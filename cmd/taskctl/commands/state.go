package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/task-planner/internal/client"
)

// newSessionState loads the CLI config and returns a refreshed TaskState.
// A rejected token clears the stored session so the next command prompts
// for a fresh login.
func newSessionState(ctx context.Context) (*client.TaskState, *cliConfig, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Token == "" {
		return nil, nil, fmt.Errorf("not logged in; run 'taskctl login' first")
	}

	state := client.New(cfg.Server, client.WithLogoutHandler(func() {
		cfg.Token = ""
		if err := saveCLIConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not clear stored session: %v\n", err)
		}
		fmt.Fprintln(os.Stderr, "Session expired; run 'taskctl login' again.")
	}))

	if err := state.SetToken(ctx, cfg.Token); err != nil {
		return nil, nil, fmt.Errorf("refresh task list: %w", err)
	}
	return state, cfg, nil
}
