package cmd

import (
	"errors"
	"fmt"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer recording extension events in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		if appCfg.Pulsar.URL == "" || appCfg.Pulsar.TopicConsumer == "" {
			return errors.New("pulsar url and consumer topic must be configured")
		}

		extensionDB, err := openExtensionDB()
		if err != nil {
			return fmt.Errorf("failed to initialize extension database: %w", err)
		}
		defer extensionDB.Close()

		consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription)
		if err != nil {
			return fmt.Errorf("failed to initialize event consumer: %w", err)
		}
		defer consumer.Close()

		log.Info().Str("topic", appCfg.Pulsar.TopicConsumer).Msg("Waiting for extension events")
		return consumer.Run(commandContext(cmd), extensionDB)
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
