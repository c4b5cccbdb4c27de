package cmd

import (
	"github.com/spf13/cobra"
)

// NewMeetingsCommand creates the meetings command with its subcommands.
func NewMeetingsCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List and inspect meetings",
		Long: `List and inspect meetings known to the server.

Examples:
  # List all meetings, newest first
  meetsum meetings list

  # Show one meeting with its transcript, summary, and action items
  meetsum meetings show 3f2a...

  # Machine-readable output
  meetsum meetings list -o json`,
	}

	cmd.AddCommand(newMeetingsListCommand(deps))
	cmd.AddCommand(newMeetingsShowCommand(deps))
	return cmd
}

func newMeetingsListCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all meetings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}

			list, err := deps.newClient(cfg).ListMeetings(cmd.Context())
			if err != nil {
				return err
			}
			return outputMeetingList(cfg.OutputFormat, list)
		},
	}
}

func newMeetingsShowCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show a meeting with its transcript, summary, and action items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}

			detail, err := deps.newClient(cfg).GetMeeting(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputDetail(cfg.OutputFormat, detail)
		},
	}
}
