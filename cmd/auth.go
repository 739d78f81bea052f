package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/voicecal/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google token used by operator commands",
		Long: `Authorize voicecal against a Google account for operator commands.

The webhook server does not need this; it uses the token the voice platform
sends with each request. The OAuth client is read from GOOGLE_CLIENT_ID and
GOOGLE_CLIENT_SECRET.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var tokenFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize calendar access and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := google.ClientConfigFromEnv()
			if err != nil {
				return err
			}
			path, err := resolveTokenFile(tokenFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Open this URL in your browser and authorize calendar access:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, client.AuthURL("voicecal"))
			fmt.Fprintln(out)
			fmt.Fprint(out, "Paste the authorization code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && code == "" {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return errors.New("no authorization code given")
			}

			if _, err := client.Exchange(cmd.Context(), path, code); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Where to cache the token (default: user cache directory)")
	return cmd
}

// resolveTokenFile returns path, or the default cache location when empty.
func resolveTokenFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return google.DefaultTokenFile()
}
