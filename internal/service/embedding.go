package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/lectern/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error)
}

// EmbeddingService converts text into fixed-length vectors. Every vector it
// returns has exactly the configured number of dimensions, so query-time and
// storage-time vectors are always comparable.
type EmbeddingService struct {
	client     EmbeddingClient
	dimensions int
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, dimensions int) *EmbeddingService {
	return &EmbeddingService{
		client:     client,
		dimensions: dimensions,
	}
}

// Dimensions returns the vector size this service produces.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Embed returns the embedding of text for the given task profile.
// Any failure is reported as domain.ErrEmbedding.
func (s *EmbeddingService) Embed(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Wrap(domain.ErrEmbedding, fmt.Errorf("text is empty"))
	}
	if !task.IsValid() {
		task = domain.EmbeddingTaskRetrievalDocument
	}

	embedding, err := s.client.GenerateEmbedding(ctx, text, task)
	if err != nil {
		return nil, domain.Wrap(domain.ErrEmbedding, err)
	}

	if len(embedding) == 0 {
		return nil, domain.Wrap(domain.ErrEmbedding, fmt.Errorf("no vector returned"))
	}

	if s.dimensions > 0 && len(embedding) != s.dimensions {
		return nil, domain.Wrap(domain.ErrEmbedding, fmt.Errorf("expected %d dimensions, got %d", s.dimensions, len(embedding)))
	}

	return embedding, nil
}
