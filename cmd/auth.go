package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rahulrocknov18/meetingsummarizer/credentials"
)

// NewAuthCommand creates the auth command with its subcommands.
func NewAuthCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the speech/analysis API key",
		Long: `Manage the Groq API key used by the transcription and summarization
stages. The key is stored in the system keyring (macOS Keychain, Windows
Credential Manager, Linux Secret Service). The GROQ_API_KEY environment
variable takes precedence when set.

Examples:
  meetsum auth set-key
  meetsum auth show
  meetsum auth clear`,
	}

	cmd.AddCommand(newAuthSetKeyCommand())
	cmd.AddCommand(newAuthShowCommand())
	cmd.AddCommand(newAuthClearCommand())
	return cmd
}

func newAuthSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key in the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := promptAPIKey()
			if err != nil {
				return err
			}
			if err := credentials.NewStore().SetAPIKey(key); err != nil {
				return err
			}
			fmt.Println("API key stored.")
			return nil
		},
	}
}

func newAuthShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored API key (masked) and its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentials.NewStore()

			key, err := store.APIKey()
			if errors.Is(err, credentials.ErrNoAPIKey) {
				fmt.Println("No API key stored. Run 'meetsum auth set-key' or set GROQ_API_KEY.")
				return nil
			}
			if err != nil {
				return err
			}

			source, err := store.Source()
			if err != nil {
				return err
			}
			fmt.Printf("API key: %s (from %s)\n", credentials.Masked(key), source)
			return nil
		},
	}
}

func newAuthClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the API key from the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := credentials.NewStore().ClearAPIKey()
			if errors.Is(err, credentials.ErrNoAPIKey) {
				fmt.Println("No API key stored.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("API key removed.")
			return nil
		},
	}
}

// promptAPIKey reads the key without echoing when stdin is a terminal.
func promptAPIKey() (string, error) {
	fmt.Print("Groq API key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
