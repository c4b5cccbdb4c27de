package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rahulrocknov18/meetingsummarizer/config"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v as a YAML document to stdout.
func outputYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(v)
}

// outputMeetingList renders the meeting list in the requested format.
func outputMeetingList(format config.OutputFormat, list []*meetings.Meeting) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSON(list)
	case config.OutputFormatYAML:
		return outputYAML(list)
	default:
		printMeetingTable(list)
		return nil
	}
}

func printMeetingTable(list []*meetings.Meeting) {
	if len(list) == 0 {
		fmt.Println("No meetings found.")
		return
	}

	fmt.Printf("Meetings (%d):\n\n", len(list))
	fmt.Printf("  %-36s  %-12s  %-8s  %s\n", "ID", "STATUS", "LENGTH", "TITLE")
	fmt.Printf("  %-36s  %-12s  %-8s  %s\n", strings.Repeat("-", 36), "------", "------", "-----")

	for _, m := range list {
		fmt.Printf("  %-36s  %-12s  %-8s  %s\n", m.ID, m.Status, formatDuration(m.DurationSeconds), m.Title)
	}
}

// outputDetail renders the detail view in the requested format.
func outputDetail(format config.OutputFormat, detail *meetings.Detail) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSON(detail)
	case config.OutputFormatYAML:
		return outputYAML(detail)
	default:
		printDetailText(detail)
		return nil
	}
}

func printDetailText(detail *meetings.Detail) {
	m := detail.Meeting
	fmt.Printf("Meeting: %s\n", m.Title)
	fmt.Printf("  ID:       %s\n", m.ID)
	fmt.Printf("  Status:   %s\n", m.Status)
	fmt.Printf("  Length:   %s\n", formatDuration(m.DurationSeconds))
	fmt.Printf("  Uploaded: %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))

	if detail.Transcript != nil {
		fmt.Printf("\nTranscript (%s):\n", detail.Transcript.Language)
		fmt.Println(indent(detail.Transcript.FullText, "  "))
	}

	if detail.Summary != nil {
		fmt.Println("\nSummary:")
		fmt.Println(indent(detail.Summary.SummaryText, "  "))

		if len(detail.Summary.KeyDecisions) > 0 {
			fmt.Println("\nKey decisions:")
			for _, d := range detail.Summary.KeyDecisions {
				fmt.Printf("  - %s\n", d)
			}
		}
		if len(detail.Summary.Participants) > 0 {
			fmt.Printf("\nParticipants: %s\n", strings.Join(detail.Summary.Participants, ", "))
		}
	}

	if len(detail.ActionItems) > 0 {
		fmt.Println("\nAction items:")
		for _, item := range detail.ActionItems {
			line := fmt.Sprintf("  - [%s] %s", item.Priority, item.TaskDescription)
			if item.Assignee != "" {
				line += " (assignee: " + item.Assignee + ")"
			}
			if item.DueDate != "" {
				line += " (due: " + item.DueDate + ")"
			}
			fmt.Println(line)
		}
	}
}

func formatDuration(seconds *int) string {
	if seconds == nil {
		return "-"
	}
	s := *seconds
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", s/60, s%60)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
