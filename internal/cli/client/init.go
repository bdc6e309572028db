package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd stores the API URL and default room in the global config.
func InitCmd() *cobra.Command {
	var room string
	var reset bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure the lectern client",
		Long: `Saves the API URL and an optional default room to the user config file.
The file lives in the user config directory unless LECTERN_CONFIG names another path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				return runReset()
			}
			apiURL, _ := cmd.Flags().GetString("api-url")
			return runInit(apiURL, room)
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "Default room ID")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove the saved configuration")

	return cmd
}

func runInit(apiURL, room string) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if config == nil {
		config = &GlobalConfig{}
	}

	if apiURL != "" {
		config.APIURL = apiURL
	}
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if room != "" {
		config.Room = room
	}

	// Fail early on an unreachable server rather than saving a broken config
	var health struct {
		Status string `json:"status"`
	}
	if err := NewAPIClientWithConfig(config.APIURL).Get("/health", &health); err != nil {
		return fmt.Errorf("cannot reach %s: %w", config.APIURL, err)
	}

	if err := SaveGlobalConfig(config); err != nil {
		return err
	}

	path, _ := GetConfigPath()
	fmt.Printf("%s Saved %s\n", boldGreen("✓"), path)
	fmt.Printf("  API URL: %s\n", config.APIURL)
	if config.Room != "" {
		fmt.Printf("  Room:    %s\n", config.Room)
	}
	return nil
}

func runReset() error {
	if err := DeleteGlobalConfig(); err != nil {
		return err
	}
	path, _ := GetConfigPath()
	fmt.Printf("%s Removed %s\n", boldGreen("✓"), path)
	return nil
}
