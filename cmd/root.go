package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/api/services"
	"github.com/EO-DataHub/eodhp-kasm-services/db"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
	awsclient "github.com/EO-DataHub/eodhp-kasm-services/internal/aws"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/events"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/secrets"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	host       string
	port       int
	appCfg     *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:           "kasm-services",
	Short:         "Kasm Services",
	Long:          `Kasm Services is a CLI tool for inspecting Kasm Workspaces sessions and extending their expiration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the config file")
}

// commonSetUp sets up logging and loads the configuration, filling in the
// Kasm credentials from the configured secret stores when the environment
// does not provide them. Nothing is sent to Kasm unless the URL, key and
// secret are all present.
func commonSetUp(ctx context.Context) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if err := resolveCredentials(ctx, appCfg); err != nil {
		return err
	}

	return appCfg.Validate()
}

// loadConfig is the set up of commands that never call Kasm.
func loadConfig() error {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func openExtensionDB() (*db.ExtensionDB, error) {
	return db.NewExtensionDB(appCfg.Database.Driver, appCfg.Database.Source, &log.Logger)
}

func resolveCredentials(ctx context.Context, cfg *appconfig.Config) error {
	if cfg.Kasm.APIKey != "" && cfg.Kasm.APIKeySecret != "" {
		return nil
	}

	creds := cfg.Credentials
	switch {
	case creds.Kubernetes.Name != "":
		client, err := secrets.NewKubernetesClient()
		if err != nil {
			return err
		}
		source := &secrets.KubernetesSource{
			Client:      client,
			Namespace:   creds.Kubernetes.Namespace,
			Name:        creds.Kubernetes.Name,
			KeyField:    creds.Kubernetes.KeyField,
			SecretField: creds.Kubernetes.SecretField,
		}
		return secrets.Apply(ctx, source, &cfg.Kasm)

	case creds.AWS.SecretID != "":
		awsCfg, err := awsclient.LoadAWSConfig(ctx, cfg.AWS.Region, creds.AWS.RoleArn)
		if err != nil {
			return err
		}
		source := &secrets.AWSSource{
			Client:   awsclient.NewSecretsManagerClient(awsCfg),
			SecretID: creds.AWS.SecretID,
		}
		return secrets.Apply(ctx, source, &cfg.Kasm)
	}

	return nil
}

func newKasmClient() *services.KasmClient {
	return services.NewKasmClient(appCfg.Kasm.URL, appCfg.Kasm.APIKey, appCfg.Kasm.APIKeySecret, appCfg.Kasm.Timeout())
}

// newNotifier publishes extension events to Pulsar when a URL is configured.
func newNotifier() events.Notifier {
	if appCfg.Pulsar.URL == "" || appCfg.Pulsar.TopicProducer == "" {
		log.Debug().Msg("Pulsar is not configured, extension events are not published")
		return events.NopNotifier{}
	}

	publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize event publisher, extension events are not published")
		return events.NopNotifier{}
	}
	return publisher
}

// commandContext carries the global logger so library code logging through
// zerolog.Ctx is not silenced.
func commandContext(cmd *cobra.Command) context.Context {
	return log.Logger.WithContext(cmd.Context())
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
