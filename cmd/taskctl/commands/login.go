package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/task-planner/internal/client"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	var server string
	var username string
	var password string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session token",
		Long:  "Exchange a username and password for a session token, stored in ~/" + configFileName + ". Use --register to create the account first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			if server != "" {
				cfg.Server = server
			}

			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			state := client.New(cfg.Server)
			ctx := context.Background()
			if register {
				err = state.Register(ctx, username, password)
			} else {
				err = state.Login(ctx, username, password)
			}
			if err != nil {
				return fmt.Errorf("authenticate: %w", err)
			}

			cfg.Token = state.Token()
			if err := saveCLIConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%d tasks).\n", username, len(state.Tasks()))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API base URL (default from config file)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&register, "register", false, "Create the account before logging in")
	return cmd
}
