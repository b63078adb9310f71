package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List running sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}

		sessions, err := newKasmClient().GetSessions(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No active or paused sessions found.")
			return nil
		}
		renderSessions(os.Stdout, sessions)
		return nil
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List the workspace images available to the API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}

		images, err := newKasmClient().GetImages(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		renderImages(os.Stdout, images)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List Kasm users and their groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}

		users, err := newKasmClient().GetUsers(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		renderUsers(os.Stdout, users)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(usersCmd)
}
