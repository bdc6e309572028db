package domain

import (
	"fmt"
	"time"
)

// AudioChunk is one recorded segment of a room, stored with its transcription
// and the embedding of that transcription. Chunks are immutable once created.
type AudioChunk struct {
	ID            string
	RoomID        string
	Transcription string
	Embedding     []float32
	CreatedAt     time.Time
}

// ChunkMatch is a chunk returned by a similarity search.
type ChunkMatch struct {
	ID            string
	Transcription string
	Similarity    float64
}

// ValidateAudioChunk validates an AudioChunk instance
func ValidateAudioChunk(c *AudioChunk) error {
	if c == nil {
		return fmt.Errorf("audio chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("audio chunk ID is required")
	}

	if c.RoomID == "" {
		return fmt.Errorf("audio chunk RoomID is required")
	}

	if c.Transcription == "" {
		return fmt.Errorf("audio chunk Transcription is required")
	}

	if len(c.Embedding) == 0 {
		return fmt.Errorf("audio chunk Embedding is required")
	}

	return nil
}

// Transcriptions returns the transcription text of each match, preserving order.
func Transcriptions(matches []*ChunkMatch) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		out = append(out, m.Transcription)
	}
	return out
}
