package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/germanamz/aix/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "aix.yaml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "aix",
		Short:   "Client for the AIx compose API",
		Long:    "aix sends prompts to the AIx compose endpoint and prints the completion.\n\nThe API key is read from the config file or AIX_API_KEY.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadDotEnv(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (default: aix.yaml if present, else environment)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(newComposeCmd(opts), newMCPCmd(opts))

	return cmd
}

// loadDotEnv loads environment variables from path. A missing file is not an
// error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the explicit path if set, otherwise aix.yaml when
// it exists, otherwise "" to read settings from the environment.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}

	return ""
}

// loadConfig reads the configuration file or the environment. Settings the
// file leaves empty fall back to AIX_API_KEY and AIX_BASE_URL.
func (o *rootOptions) loadConfig() (config.Config, error) {
	path := resolveConfigPath(o.configPath)
	if path == "" {
		return config.FromEnv()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(config.EnvAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(config.EnvBaseURL)
	}

	return cfg, nil
}

// logger returns a text logger on w. Without --verbose only warnings and
// errors are written.
func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
