package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the voicecal application
var rootCmd = &cobra.Command{
	Use:   "voicecal",
	Short: "Voice assistant skill for scheduling Google Calendar events",
	Long: `voicecal is the backend of a voice assistant skill that finds free time in
a user's Google Calendar, remembers preferred times for kinds of events, and
adds, lists and undoes events by voice.

It can run as:
  - A webhook server for the voice platform (default)
  - A CLI that speaks the availability for a day, for operators`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "voicecal version %s\n" .Version}}`)

	// If no subcommand is provided, run the webhook server
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAvailabilityCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
