// Package cmd provides CLI commands for the meetsum tool.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rahulrocknov18/meetingsummarizer/client"
	"github.com/Rahulrocknov18/meetingsummarizer/config"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// Global flags.
var (
	flagServerURL string
	flagOutput    string
	flagTimeout   time.Duration
	flagDebug     bool
)

// Deps holds the shared dependencies for commands. Tests substitute
// LoadConfig to avoid touching the real config file.
type Deps struct {
	Config     *config.Config
	LoadConfig func() (*config.Config, error)
}

// DefaultDeps returns the default dependencies for production use.
func DefaultDeps() *Deps {
	return &Deps{LoadConfig: config.LoadConfig}
}

// load resolves the configuration once, applying global flag overrides.
func (d *Deps) load() (*config.Config, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	cfg, err := d.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flagServerURL != "" {
		cfg.ServerURL = flagServerURL
	}
	if flagOutput != "" {
		cfg.OutputFormat = config.OutputFormat(flagOutput)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if flagDebug {
		cfg.Debug = true
	}
	d.Config = cfg
	return cfg, nil
}

// newClient builds the API client from the resolved configuration.
func (d *Deps) newClient(cfg *config.Config) *client.Client {
	return client.New(client.Options{
		ServerURL:     cfg.ServerURL,
		Timeout:       cfg.Timeout,
		UploadTimeout: cfg.UploadTimeout,
	}, d.newLogger(cfg, false))
}

// newLogger builds a logger; the server uses JSON output, interactive
// commands use the console writer.
func (d *Deps) newLogger(cfg *config.Config, jsonFormat bool) logging.Logger {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: "meetsum",
		JSONFormat:  jsonFormat,
		Output:      os.Stderr,
	})
}

// NewRootCommand assembles the meetsum command tree.
func NewRootCommand() *cobra.Command {
	deps := DefaultDeps()

	rootCmd := &cobra.Command{
		Use:   "meetsum",
		Short: "Meeting summarizer CLI and server",
		Long: `meetsum uploads meeting recordings and drives them through an AI
pipeline: speech-to-text transcription followed by summary and action-item
extraction.

Typical workflow:
  # Start the API server (needs Postgres and a Groq API key)
  meetsum serve

  # Upload a recording and follow it through the pipeline
  meetsum upload ./standup.mp3 --title "Daily standup" --follow

  # Inspect the results
  meetsum meetings list
  meetsum meetings show <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "API server URL (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, or yaml")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "request timeout (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewServeCommand(deps))
	rootCmd.AddCommand(NewUploadCommand(deps))
	rootCmd.AddCommand(NewMeetingsCommand(deps))
	rootCmd.AddCommand(NewTranscribeCommand(deps))
	rootCmd.AddCommand(NewSummarizeCommand(deps))
	rootCmd.AddCommand(NewPollCommand(deps))
	rootCmd.AddCommand(NewWatchCommand(deps))
	rootCmd.AddCommand(NewAuthCommand(deps))

	return rootCmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
