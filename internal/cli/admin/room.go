package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloo-solutions/lectern/internal/config"
	"github.com/cloo-solutions/lectern/internal/database"
	"github.com/cloo-solutions/lectern/internal/repository"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func RoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
		Long:  "Create and list rooms directly against the database",
	}

	cmd.AddCommand(RoomCreateCmd())
	cmd.AddCommand(RoomListCmd())

	return cmd
}

func RoomCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new room",
		Long:  "Create a new room with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoomCreate,
	}

	cmd.Flags().StringP("description", "d", "", "Room description")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runRoomCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	description, _ := cmd.Flags().GetString("description")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	roomSvc := service.NewRoomService(repository.NewRoomRepository(pool))

	room, err := roomSvc.Create(ctx, service.CreateRoomInput{Name: args[0], Description: description})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":          room.ID,
			"name":        room.Name,
			"description": room.Description,
			"created_at":  room.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Room created: %s (%s)\n", room.Name, room.ID)
	}

	return nil
}

func RoomListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		Long:  "List all rooms with their question and chunk counts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runRoomList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runRoomList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rooms, err := service.NewRoomService(repository.NewRoomRepository(pool)).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(rooms))
		for i, room := range rooms {
			data[i] = map[string]interface{}{
				"id":             room.ID,
				"name":           room.Name,
				"description":    room.Description,
				"question_count": room.QuestionCount,
				"chunk_count":    room.ChunkCount,
				"created_at":     room.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{"items": data}, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms found")
		return nil
	}
	fmt.Println("Rooms:")
	for _, room := range rooms {
		fmt.Printf("  %s: %s (%d questions, %d chunks, created: %s)\n",
			room.ID, room.Name, room.QuestionCount, room.ChunkCount, room.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newPool(ctx, cfg)
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
