package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// AudioChunkRepository stores transcribed chunks and answers cosine
// similarity queries with pgvector.
type AudioChunkRepository struct {
	db dbtx
}

func NewAudioChunkRepository(pool *pgxpool.Pool) *AudioChunkRepository {
	return &AudioChunkRepository{db: pool}
}

func NewAudioChunkRepositoryWithTx(tx pgx.Tx) *AudioChunkRepository {
	return &AudioChunkRepository{db: tx}
}

func (r *AudioChunkRepository) Create(ctx context.Context, c *domain.AudioChunk) error {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO audio_chunks (id, room_id, transcription, embeddings, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.ID, c.RoomID, c.Transcription, pgvector.NewVector(c.Embedding), c.CreatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPersistence
		}
		return err
	}
	return nil
}

func (r *AudioChunkRepository) GetByID(ctx context.Context, id string) (*domain.AudioChunk, error) {
	var c domain.AudioChunk
	var vec pgvector.Vector
	err := r.db.QueryRow(ctx,
		`SELECT id, room_id, transcription, embeddings, created_at FROM audio_chunks WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.RoomID, &c.Transcription, &vec, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAudioChunkNotFound
		}
		return nil, err
	}
	c.Embedding = vec.Slice()
	return &c, nil
}

// Search returns up to limit chunks of the room whose cosine similarity to
// query is strictly greater than minSimilarity, most similar first.
func (r *AudioChunkRepository) Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error) {
	ctx, span := telemetry.StartSpan(ctx, "vector.search", telemetry.SpanAttributes{
		RoomID:    roomID,
		Operation: "search",
	})
	defer span.End()

	if limit <= 0 || uuid.Validate(roomID) != nil {
		return []*domain.ChunkMatch{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, transcription, 1 - (embeddings <=> $1) AS similarity
		 FROM audio_chunks
		 WHERE room_id = $2 AND 1 - (embeddings <=> $1) > $3
		 ORDER BY embeddings <=> $1, id
		 LIMIT $4`,
		pgvector.NewVector(query), roomID, minSimilarity, limit,
	)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.ChunkMatch, 0, limit)
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.ID, &m.Transcription, &m.Similarity); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetData("results", len(results))
	return results, nil
}

func (r *AudioChunkRepository) CountByRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM audio_chunks WHERE room_id = $1`,
		roomID,
	).Scan(&count)
	return count, err
}
