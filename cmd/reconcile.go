package cmd

import (
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var olderThan time.Duration

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Restore keepalive settings left raised by an interrupted extension",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}
		ctx = commandContext(cmd)

		extensionDB, err := openExtensionDB()
		if err != nil {
			return fmt.Errorf("failed to initialize extension database: %w", err)
		}
		defer extensionDB.Close()

		notifier := newNotifier()
		defer notifier.Close()

		pending, err := extensionDB.PendingExtensions(ctx, time.Now().Add(-olderThan))
		if err != nil {
			return fmt.Errorf("failed to fetch pending extensions: %w", err)
		}

		log.Info().Int("pending", len(pending)).Msg("Starting reconciliation process...")

		extender := services.NewExtender(newKasmClient(), notifier)
		var failed int
		for _, extension := range pending {
			event, err := extender.Reconcile(ctx, extension)
			if err != nil {
				log.Error().Err(err).Str("kasm_id", extension.KasmID).Str("group_id", extension.GroupID).Msg("Failed to reconcile extension")
				failed++
				continue
			}

			if err := extensionDB.RecordEvent(ctx, event); err != nil {
				log.Error().Err(err).Str("kasm_id", event.KasmID).Msg("Failed to record reconciled extension")
				failed++
			}
		}

		log.Info().Int("reconciled", len(pending)-failed).Int("failed", failed).Msg("Reconciliation process completed")
		if failed > 0 {
			return fmt.Errorf("%d of %d extensions could not be reconciled", failed, len(pending))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().DurationVar(&olderThan, "older-than", 10*time.Minute,
		"only reconcile extensions raised at least this long ago")
}
