package domain

import (
	"fmt"
	"strings"
	"time"
)

// Room groups the audio chunks and questions of one class session.
type Room struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// RoomSummary is a room with its aggregate counts, used for listings.
type RoomSummary struct {
	Room
	QuestionCount int
	ChunkCount    int
}

// NewRoom creates a new Room instance
func NewRoom(id, name, description string, createdAt time.Time) *Room {
	return &Room{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   createdAt,
	}
}

// ValidateRoom validates a Room instance
func ValidateRoom(r *Room) error {
	if r == nil {
		return fmt.Errorf("room cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("room ID is required")
	}

	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyRoomName
	}

	return nil
}
