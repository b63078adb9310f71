package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <kasm_id>",
	Short: "Destroy a running session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}
		ctx = commandContext(cmd)
		kasmID := args[0]

		client := newKasmClient()
		sessions, err := client.GetSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		for _, s := range sessions {
			if s.KasmID != kasmID {
				continue
			}
			if err := client.DestroySession(ctx, s.KasmID, s.UserID); err != nil {
				return fmt.Errorf("failed to destroy session %s: %w", kasmID, err)
			}
			log.Info().Str("kasm_id", kasmID).Str("user_id", s.UserID).Msg("Session destroyed")
			fmt.Printf("Session %s destroyed.\n", kasmID)
			return nil
		}

		return fmt.Errorf("session %s not found", kasmID)
	},
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
