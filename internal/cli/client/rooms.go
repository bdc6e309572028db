package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// roomPath joins /rooms/{roomID} and suffix, escaping the id as a single segment.
func roomPath(roomID string, suffix ...string) string {
	return strings.Join(append([]string{"/rooms", url.PathEscape(roomID)}, suffix...), "/")
}

// Room mirrors the API room representation.
type Room struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"createdAt"`
	QuestionsCount *int   `json:"questionsCount,omitempty"`
	ChunksCount    *int   `json:"chunksCount,omitempty"`
}

type roomListResponse struct {
	Rooms []Room `json:"rooms"`
}

// RoomsCmd groups the room commands.
func RoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rooms",
		Aliases: []string{"room"},
		Short:   "Manage rooms",
	}

	cmd.AddCommand(roomsListCmd())
	cmd.AddCommand(roomsCreateCmd())
	cmd.AddCommand(roomsGetCmd())

	return cmd
}

func roomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp roomListResponse
			if err := api.Get("/rooms", &resp); err != nil {
				return fmt.Errorf("failed to list rooms: %w", err)
			}

			if outputJSON(cmd) {
				printJSON(resp)
				return nil
			}
			if len(resp.Rooms) == 0 {
				fmt.Println("No rooms found.")
				return nil
			}
			for _, room := range resp.Rooms {
				fmt.Printf("%s  %s", boldCyan(room.ID), room.Name)
				if room.QuestionsCount != nil && room.ChunksCount != nil {
					fmt.Print(faint(fmt.Sprintf("  (%d questions, %d chunks)", *room.QuestionsCount, *room.ChunksCount)))
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func roomsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var room Room
			body := map[string]string{"name": args[0], "description": description}
			if err := api.Post("/rooms", body, &room); err != nil {
				return fmt.Errorf("failed to create room: %w", err)
			}

			if outputJSON(cmd) {
				printJSON(room)
				return nil
			}
			fmt.Printf("%s Room created: %s (%s)\n", boldGreen("✓"), room.Name, room.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Room description")

	return cmd
}

func roomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var room Room
			if err := api.Get(roomPath(args[0]), &room); err != nil {
				return fmt.Errorf("failed to get room: %w", err)
			}

			if outputJSON(cmd) {
				printJSON(room)
				return nil
			}
			fmt.Printf("%s  %s\n", boldCyan(room.ID), room.Name)
			if room.Description != "" {
				fmt.Printf("  %s\n", room.Description)
			}
			fmt.Printf("  Created: %s\n", room.CreatedAt)
			return nil
		},
	}
}

func outputJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}
