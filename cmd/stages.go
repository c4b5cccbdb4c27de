package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/poller"
)

// NewTranscribeCommand creates the transcribe command.
func NewTranscribeCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <meeting-id>",
		Short: "Run the transcription stage for a meeting",
		Long: `Run the transcription stage for an uploaded meeting.

If a transcript already exists the call returns it without contacting the
speech service. A meeting that previously failed can be re-triggered.

Examples:
  meetsum transcribe 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}

			resp, err := deps.newClient(cfg).TriggerTranscription(cmd.Context(), args[0])
			if err != nil {
				return describeAPIError(err)
			}

			if resp.Message != "" {
				fmt.Println(resp.Message)
			} else {
				fmt.Printf("Transcribed %.0f seconds of audio\n", resp.Duration)
			}
			if resp.Transcript != nil {
				fmt.Println(indent(resp.Transcript.FullText, "  "))
			}
			return nil
		},
	}
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <meeting-id>",
		Short: "Run the summarization stage for a meeting",
		Long: `Run the summarization stage for a transcribed meeting.

If a summary already exists the call returns it without contacting the
analysis service. The meeting must have a transcript first.

Examples:
  meetsum summarize 3f2a...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}

			resp, err := deps.newClient(cfg).TriggerSummarization(cmd.Context(), args[0])
			if err != nil {
				return describeAPIError(err)
			}

			if resp.Message != "" {
				fmt.Println(resp.Message)
			}
			if resp.Summary != nil {
				fmt.Println("Summary:")
				fmt.Println(indent(resp.Summary.SummaryText, "  "))
			}
			if len(resp.ActionItems) > 0 {
				fmt.Printf("\nExtracted %d action items\n", len(resp.ActionItems))
			}
			return nil
		},
	}
}

// NewPollCommand creates the poll command.
func NewPollCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <meeting-id>",
		Short: "Follow a meeting through the pipeline until it completes",
		Long: `Poll a meeting's status and trigger the next pipeline stage on each
observed transition: transcription when the meeting is uploaded,
summarization once it is transcribed. Stops when the meeting completes
or fails. Ctrl-C cancels the poll without affecting the meeting.

Examples:
  meetsum poll 3f2a...
  meetsum poll 3f2a... -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}
			api := deps.newClient(cfg)

			detail, err := poller.New(api, cfg.PollInterval, deps.newLogger(cfg, false)).Follow(cmd.Context(), args[0])
			if err != nil {
				return describeAPIError(err)
			}
			return outputDetail(cfg.OutputFormat, detail)
		},
	}
}
