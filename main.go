// Package main provides the meetsum CLI entry point.
// meetsum is the command-line interface and API server for the meeting
// summarizer pipeline.
package main

import "github.com/Rahulrocknov18/meetingsummarizer/cmd"

func main() {
	cmd.Execute()
}
