// Package cmd implements the command-line interface for voicecal.
//
// This package provides the following commands:
//   - serve: Run the voice platform webhook server
//   - availability: Speak a day's availability straight from Google Calendar
//   - auth: Cache a Google token for operator commands
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
