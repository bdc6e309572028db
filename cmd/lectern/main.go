package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/lectern/internal/cli"
	"github.com/cloo-solutions/lectern/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lectern",
		Short: "Lectern CLI - ask questions about recorded classes",
		Long: `Lectern CLI uploads classroom audio and asks questions about it.

Environment variables:
  LECTERN_API_URL   API base URL (default: http://localhost:8080)
  LECTERN_ROOM      Room used when --room is not given
  LECTERN_CONFIG    Client config file (default: <user config dir>/lectern/config.json)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.BindEnv(rootCmd, "api-url", "LECTERN_API_URL")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.RoomsCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.QuestionsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
