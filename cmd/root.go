package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/wkalt/mohair/client"
	"github.com/wkalt/mohair/launcher"
	"github.com/wkalt/mohair/util/log"
)

var (
	logLevel       string
	logFormat      string
	serviceAddress string
	requestTimeout time.Duration
)

// rootEnv holds settings shared by every command.
type rootEnv struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

var rootCmd = &cobra.Command{
	Use:           "mohair",
	Short:         "mohair query plan service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		env := rootEnv{}
		if err := envconfig.Process(launcher.EnvPrefix, &env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		override(cmd, "log-level", &env.LogLevel, logLevel)
		override(cmd, "log-format", &env.LogFormat, logFormat)
		level, err := log.ParseLevel(env.LogLevel)
		if err != nil {
			return err
		}
		return log.Configure(cmd.ErrOrStderr(), level, log.Format(env.LogFormat))
	},
}

// Execute runs the command named by the process arguments.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return err
	}
	return nil
}

// override replaces dst with the flag value when the flag was set explicitly.
func override[T any](cmd *cobra.Command, name string, dst *T, value T) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

// resolveConfig returns the launcher configuration from flags, then the
// environment, then the built-in defaults.
func resolveConfig(cmd *cobra.Command) (launcher.Config, error) {
	cfg, err := launcher.LoadConfig()
	if err != nil {
		return launcher.Config{}, err
	}
	override(cmd, "location", &cfg.ServiceLocation, serviceAddress)
	return cfg, nil
}

func dial(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return client.Dial(cfg.ServiceLocation)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

// readInput reads a plan message from the named file, or stdin for "-" or no
// argument.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return data, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(
		&serviceAddress, "location", launcher.DefaultServiceLocation, "Service location to serve or connect to",
	)
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 10*time.Second, "Client request timeout")
}
