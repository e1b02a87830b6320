package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rohits-web03/studentvault/internal/client"
	"github.com/rohits-web03/studentvault/internal/config"
	"github.com/spf13/cobra"
)

var (
	sessionPath string
	apiURL      string

	rootCmd = &cobra.Command{
		Use:   "studentctl",
		Short: "studentctl - command-line client for StudentVault",
		Long: `studentctl talks to a StudentVault server. Profile fields and passwords
are encrypted on this machine with CLIENT_KEY before they are sent, and
decrypted here when they come back.

Environment:
  CLIENT_KEY             client-tier passphrase (required)
  STUDENTVAULT_API_URL   server base URL (default http://localhost:8080)`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "file holding the login tokens")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "server base URL (overrides STUDENTVAULT_API_URL)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
}

// newClient builds a client from the environment and loads any saved session.
func newClient() (*client.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	base := cfg.APIBaseURL
	if apiURL != "" {
		base = apiURL
	}
	c, err := client.New(base, cfg.ClientKey)
	if err != nil {
		return nil, err
	}
	tokens, err := loadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	c.SetTokens(tokens)
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+err.Error())
		os.Exit(1)
	}
}
