package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rahulrocknov18/meetingsummarizer/client"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/poller"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand(deps *Deps) *cobra.Command {
	var (
		title  string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a meeting recording",
		Long: `Upload a meeting recording to the server.

The file's media type is derived from its extension. Supported formats:
mp3, wav, m4a, mp4, aac, webm, ogg, flac. The upload limit is 50 MB.

Examples:
  # Upload and print the created meeting
  meetsum upload ./standup.mp3 --title "Daily standup"

  # Upload and drive the pipeline until the summary is ready
  meetsum upload ./standup.mp3 --follow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}
			api := deps.newClient(cfg)

			m, err := api.UploadFile(cmd.Context(), args[0], title)
			if err != nil {
				return describeAPIError(err)
			}
			fmt.Printf("Uploaded meeting %s (%s)\n", m.ID, m.Title)

			if !follow {
				return nil
			}

			fmt.Println("Processing...")
			detail, err := poller.New(api, cfg.PollInterval, deps.newLogger(cfg, false)).Follow(cmd.Context(), m.ID)
			if err != nil {
				return describeAPIError(err)
			}
			return outputDetail(cfg.OutputFormat, detail)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "meeting title (defaults to the filename)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "poll the meeting and trigger each stage until completion")
	return cmd
}

// describeAPIError turns rate-limit responses into actionable guidance.
func describeAPIError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		wait := apiErr.RetryAfter
		if wait == "" {
			wait = "a few minutes"
		}
		return fmt.Errorf("rate limited, wait %s and trigger the stage again: %s", wait, apiErr.Message)
	}
	return err
}
