package vectorstore

import (
	"context"
	"log"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

// Index stores audio chunks and answers similarity queries over them.
type Index interface {
	Create(ctx context.Context, c *domain.AudioChunk) error
	Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error)
	CountByRoom(ctx context.Context, roomID string) (int, error)
}

// MirroredStore writes every chunk to a primary index, which stays the record,
// and copies it into a mirror that serves search. A room whose mirror holds
// fewer chunks than the primary is searched in the primary instead, so a lost
// or lagging mirror never hides a chunk.
type MirroredStore struct {
	primary Index
	mirror  Index
}

func NewMirroredStore(primary, mirror Index) *MirroredStore {
	return &MirroredStore{primary: primary, mirror: mirror}
}

// Create inserts into the primary first. A failed mirror write is logged and
// does not fail the insert.
func (s *MirroredStore) Create(ctx context.Context, c *domain.AudioChunk) error {
	if err := s.primary.Create(ctx, c); err != nil {
		return err
	}
	if err := s.mirror.Create(ctx, c); err != nil {
		log.Printf("failed to mirror audio chunk %s: %v", c.ID, err)
		telemetry.CaptureError(ctx, err)
	}
	return nil
}

func (s *MirroredStore) Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error) {
	if s.mirrorCurrent(ctx, roomID) {
		return s.mirror.Search(ctx, roomID, query, minSimilarity, limit)
	}
	return s.primary.Search(ctx, roomID, query, minSimilarity, limit)
}

// CountByRoom reports the primary's count.
func (s *MirroredStore) CountByRoom(ctx context.Context, roomID string) (int, error) {
	return s.primary.CountByRoom(ctx, roomID)
}

func (s *MirroredStore) mirrorCurrent(ctx context.Context, roomID string) bool {
	want, err := s.primary.CountByRoom(ctx, roomID)
	if err != nil {
		log.Printf("failed to count chunks for room %s: %v", roomID, err)
		return false
	}
	have, err := s.mirror.CountByRoom(ctx, roomID)
	if err != nil {
		log.Printf("failed to count mirrored chunks for room %s: %v", roomID, err)
		return false
	}
	if have < want {
		log.Printf("mirror holds %d of %d chunks for room %s, searching primary", have, want, roomID)
		return false
	}
	return true
}
