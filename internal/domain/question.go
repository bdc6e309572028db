package domain

import (
	"fmt"
	"strings"
	"time"
)

// Question is a question asked in a room. Answer is nil when no answer could
// be produced; it is set once at creation and never updated.
type Question struct {
	ID        string
	RoomID    string
	Question  string
	Answer    *string
	CreatedAt time.Time
}

// NewQuestion creates a new Question instance
func NewQuestion(id, roomID, question string, answer *string, createdAt time.Time) *Question {
	return &Question{
		ID:        id,
		RoomID:    roomID,
		Question:  question,
		Answer:    answer,
		CreatedAt: createdAt,
	}
}

// ValidateQuestion validates a Question instance
func ValidateQuestion(q *Question) error {
	if q == nil {
		return fmt.Errorf("question cannot be nil")
	}

	if q.ID == "" {
		return fmt.Errorf("question ID is required")
	}

	if q.RoomID == "" {
		return fmt.Errorf("question RoomID is required")
	}

	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyQuestion
	}

	return nil
}
