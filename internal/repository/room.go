package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db dbtx
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: pool}
}

func NewRoomRepositoryWithTx(tx pgx.Tx) *RoomRepository {
	return &RoomRepository{db: tx}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO rooms (id, name, description, created_at)
		 VALUES ($1, $2, $3, $4)`,
		room.ID, room.Name, nullableString(room.Description), room.CreatedAt,
	)
	return err
}

// GetByID returns the room, or domain.ErrRoomNotFound when id is unknown or
// not a UUID at all.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrRoomNotFound
	}

	var room domain.Room
	var description *string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM rooms WHERE id = $1`,
		id,
	).Scan(&room.ID, &room.Name, &description, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if description != nil {
		room.Description = *description
	}
	return &room, nil
}

// List returns all rooms, newest first, with their question and chunk counts.
func (r *RoomRepository) List(ctx context.Context) ([]*domain.RoomSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.name, r.description, r.created_at,
		        (SELECT count(*) FROM questions q WHERE q.room_id = r.id) AS question_count,
		        (SELECT count(*) FROM audio_chunks c WHERE c.room_id = r.id) AS chunk_count
		 FROM rooms r
		 ORDER BY r.created_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RoomSummary
	for rows.Next() {
		var s domain.RoomSummary
		var description *string
		if err := rows.Scan(&s.ID, &s.Name, &description, &s.CreatedAt, &s.QuestionCount, &s.ChunkCount); err != nil {
			return nil, err
		}
		if description != nil {
			s.Description = *description
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}
