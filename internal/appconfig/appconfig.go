package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// ErrConfigurationMissing is returned when a value required to talk to Kasm
// is absent. It is permanent until an operator fixes the configuration.
var ErrConfigurationMissing = errors.New("configuration missing")

const (
	DefaultTimeoutSeconds = 10
	DefaultHours          = 6
	DefaultMaxHours       = 24 * 7

	// maxDurationHours is the largest hour count a time.Duration can hold.
	maxDurationHours = math.MaxInt64 / int(time.Hour)
)

// Config holds all configuration details
type Config struct {
	Host        string            `yaml:"host"`
	BasePath    string            `yaml:"basePath"`
	DocsPath    string            `yaml:"docsPath"`
	Kasm        KasmConfig        `yaml:"kasm"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Auth        AuthConfig        `yaml:"auth"`
	Database    DatabaseConfig    `yaml:"database"`
	Pulsar      PulsarConfig      `yaml:"pulsar"`
	AWS         AWSConfig         `yaml:"aws"`
}

// KasmConfig defines how to reach the Kasm API. URL, key and secret may be
// overridden from the environment.
type KasmConfig struct {
	URL            string `yaml:"url" envconfig:"KASM_URL"`
	APIKey         string `yaml:"apiKey" envconfig:"API_KEY"`
	APIKeySecret   string `yaml:"apiKeySecret" envconfig:"API_KEY_SECRET"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" ignored:"true"`
	DefaultHours   int    `yaml:"defaultHours" ignored:"true"`
	MaxHours       int    `yaml:"maxHours" ignored:"true"`
}

// Timeout is the deadline applied to every outbound Kasm call.
func (k KasmConfig) Timeout() time.Duration {
	if k.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(k.TimeoutSeconds) * time.Second
}

// CredentialsConfig defines where the API key and secret are read from when
// they are not supplied by the environment.
type CredentialsConfig struct {
	Kubernetes KubernetesSecretConfig `yaml:"kubernetes"`
	AWS        AWSSecretConfig        `yaml:"aws"`
}

// KubernetesSecretConfig names a secret holding the API key pair
type KubernetesSecretConfig struct {
	Namespace   string `yaml:"namespace"`
	Name        string `yaml:"name"`
	KeyField    string `yaml:"keyField"`
	SecretField string `yaml:"secretField"`
}

// AWSSecretConfig names a Secrets Manager secret holding a JSON document
// with "api_key" and "api_key_secret". RoleArn is assumed before reading it
// when set.
type AWSSecretConfig struct {
	SecretID string `yaml:"secretId"`
	RoleArn  string `yaml:"roleArn"`
}

// AuthConfig defines who may call the HTTP API
type AuthConfig struct {
	AdminRole string `yaml:"adminRole"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BasePath: "/api",
		DocsPath: "/api/docs",
		Kasm: KasmConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
			DefaultHours:   DefaultHours,
			MaxHours:       DefaultMaxHours,
		},
		Auth: AuthConfig{
			AdminRole: "kasm_admin",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
	}
}

// LoadConfig loads and parses the configuration from a given file path and
// applies environment overrides. An empty path yields the defaults plus the
// environment.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		// Parse the template file
		tmpl, err := template.ParseFiles(path)
		if err != nil {
			log.Error().Err(err).Msg("error parsing config file template")
			return nil, err
		}

		// Execute the template with environment variables
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
			log.Error().Err(err).Msg("error executing config file template")
			return nil, err
		}

		if err := yaml.Unmarshal(buf.Bytes(), config); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal config YAML")
			return nil, err
		}
	}

	if err := envconfig.Process("", &config.Kasm); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if config.Kasm.MaxHours <= 0 || config.Kasm.MaxHours > maxDurationHours {
		config.Kasm.MaxHours = DefaultMaxHours
	}
	if config.Kasm.DefaultHours <= 0 {
		config.Kasm.DefaultHours = DefaultHours
	}
	if config.Kasm.DefaultHours > config.Kasm.MaxHours {
		config.Kasm.DefaultHours = config.Kasm.MaxHours
	}
	config.Kasm.URL = strings.TrimRight(config.Kasm.URL, "/")

	return config, nil
}

// Validate checks that everything needed to call the Kasm API is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Kasm.URL == "" {
		missing = append(missing, "KASM_URL")
	}
	if c.Kasm.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.Kasm.APIKeySecret == "" {
		missing = append(missing, "API_KEY_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
