// Package vectorstore keeps audio chunk embeddings in an embedded chromem-go
// database as an alternative to pgvector.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
	"github.com/philippgille/chromem-go"
)

const (
	metaRoomID    = "room_id"
	metaCreatedAt = "created_at"
)

// ErrEmptyQuery is returned when Search is called without a query vector.
var ErrEmptyQuery = errors.New("query vector is empty")

// ChromemStore stores each room's chunks in its own collection, so a search
// never sees another room's chunks.
type ChromemStore struct {
	db *chromem.DB
}

// NewChromemStore opens a persistent store at path, or an in-memory one when
// path is empty.
func NewChromemStore(path string) (*ChromemStore, error) {
	if path == "" {
		return &ChromemStore{db: chromem.NewDB()}, nil
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem db: %w", err)
	}
	return &ChromemStore{db: db}, nil
}

func collectionName(roomID string) string {
	return "room-" + roomID
}

func (s *ChromemStore) collection(roomID string) (*chromem.Collection, error) {
	metadata := map[string]string{
		"hnsw:space": "cosine",
		metaRoomID:   roomID,
	}
	return s.db.GetOrCreateCollection(collectionName(roomID), metadata, nil)
}

// Create adds the chunk to its room's collection.
func (s *ChromemStore) Create(ctx context.Context, c *domain.AudioChunk) error {
	if len(c.Embedding) == 0 {
		return fmt.Errorf("audio chunk %s has no embedding", c.ID)
	}

	col, err := s.collection(c.RoomID)
	if err != nil {
		return fmt.Errorf("failed to open collection: %w", err)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// chromem may normalize the vector it is handed, so it gets its own copy.
	embedding := make([]float32, len(c.Embedding))
	copy(embedding, c.Embedding)

	return col.AddDocument(ctx, chromem.Document{
		ID:        c.ID,
		Content:   c.Transcription,
		Embedding: embedding,
		Metadata: map[string]string{
			metaRoomID:    c.RoomID,
			metaCreatedAt: createdAt.Format(time.RFC3339Nano),
		},
	})
}

// Search returns up to limit chunks of the room whose cosine similarity to
// query is strictly greater than minSimilarity, most similar first.
func (s *ChromemStore) Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error) {
	ctx, span := telemetry.StartSpan(ctx, "vector.search", telemetry.SpanAttributes{
		RoomID:    roomID,
		Operation: "search",
	})
	defer span.End()

	if len(query) == 0 {
		return nil, ErrEmptyQuery
	}

	col := s.db.GetCollection(collectionName(roomID), nil)
	if col == nil || limit <= 0 {
		return []*domain.ChunkMatch{}, nil
	}

	n := min(limit, col.Count())
	if n == 0 {
		return []*domain.ChunkMatch{}, nil
	}

	q := make([]float32, len(query))
	copy(q, query)

	results, err := col.QueryEmbedding(ctx, q, n, nil, nil)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	matches := make([]*domain.ChunkMatch, 0, len(results))
	for _, r := range results {
		similarity := float64(r.Similarity)
		if !(similarity > minSimilarity) {
			continue
		}
		matches = append(matches, &domain.ChunkMatch{
			ID:            r.ID,
			Transcription: r.Content,
			Similarity:    similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})

	span.SetData("results", len(matches))
	return matches, nil
}

// CountByRoom returns the number of chunks stored for the room.
func (s *ChromemStore) CountByRoom(_ context.Context, roomID string) (int, error) {
	col := s.db.GetCollection(collectionName(roomID), nil)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}
