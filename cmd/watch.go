package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/poller"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/watcher"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(deps *Deps) *cobra.Command {
	var (
		follow      bool
		settleDelay time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and upload new recordings automatically",
		Long: `Watch a directory for newly created audio files and upload each one
as a meeting. The meeting title is derived from the filename.

With --follow, each uploaded meeting is also driven through transcription
and summarization. Runs until interrupted with Ctrl-C; in-flight uploads
are allowed to finish.

Examples:
  # Upload everything a recorder drops into ~/Recordings
  meetsum watch ~/Recordings

  # Upload and fully process each recording
  meetsum watch ~/Recordings --follow --concurrency 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}
			api := deps.newClient(cfg)
			logger := deps.newLogger(cfg, false)

			handler := func(ctx context.Context, path string) error {
				title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				m, err := api.UploadFile(ctx, path, title)
				if err != nil {
					return err
				}
				logger.Info("uploaded recording",
					logging.F("meeting_id", m.ID),
					logging.F("path", path))

				if !follow {
					return nil
				}
				_, err = poller.New(api, cfg.PollInterval, logger).Follow(ctx, m.ID)
				if err == nil {
					logger.Info("meeting processed", logging.F("meeting_id", m.ID))
				}
				return err
			}

			w, err := watcher.New(watcher.Config{
				Dir:           args[0],
				SettleDelay:   settleDelay,
				MaxConcurrent: concurrency,
			}, handler, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Println("Watch stopped.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "drive each uploaded meeting through the full pipeline")
	cmd.Flags().DurationVar(&settleDelay, "settle", watcher.DefaultSettleDelay, "wait after a file appears before uploading it")
	cmd.Flags().IntVar(&concurrency, "concurrency", watcher.DefaultMaxConcurrent, "maximum concurrent uploads")
	return cmd
}
