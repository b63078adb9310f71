package cmd

import (
	"os"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/services"
	"github.com/spf13/cobra"
)

var extendOpts services.ExtendOptions

var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Extend the expiration of a running session",
	Long: `Lists the running sessions, asks which one to extend and for how many
hours, then raises the keepalive setting of the owner's group, refreshes the
session and puts the setting back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := commonSetUp(ctx); err != nil {
			return err
		}
		ctx = commandContext(cmd)

		notifier := newNotifier()
		defer notifier.Close()

		client := newKasmClient()
		operator := services.NewOperator(client, services.NewExtender(client, notifier), appCfg.Kasm.DefaultHours, os.Stdin, os.Stdout)
		operator.MaxHours = appCfg.Kasm.MaxHours

		return operator.Run(ctx, extendOpts)
	},
}

func init() {
	rootCmd.AddCommand(extendCmd)
	extendCmd.Flags().StringVar(&extendOpts.KasmID, "session", "", "kasm id of the session to extend, skips the prompt")
	extendCmd.Flags().IntVar(&extendOpts.Hours, "hours", 0, "number of hours to extend by, skips the prompt")
}
