package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/pagination"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionRepository struct {
	db dbtx
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: pool}
}

func NewQuestionRepositoryWithTx(tx pgx.Tx) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO questions (id, room_id, question, answer, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.ID, q.RoomID, q.Question, q.Answer, q.CreatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPersistence
		}
		return err
	}
	return nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrQuestionNotFound
	}

	var q domain.Question
	err := r.db.QueryRow(ctx,
		`SELECT id, room_id, question, answer, created_at FROM questions WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.RoomID, &q.Question, &q.Answer, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) ListByRoomWithCursor(ctx context.Context, roomID string, cursor *pagination.Cursor, limit int) (*service.QuestionPageResult, error) {
	limit = pagination.ClampLimit(limit)
	if uuid.Validate(roomID) != nil {
		return nil, domain.ErrRoomNotFound
	}
	if cursor != nil && uuid.Validate(cursor.LastID) != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", pagination.ErrInvalidCursor)
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, room_id, question, answer, created_at
			 FROM questions
			 WHERE room_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			roomID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, room_id, question, answer, created_at
			 FROM questions
			 WHERE room_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			roomID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.RoomID, &q.Question, &q.Answer, &q.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, nextCursor, hasMore := pagination.Trim(items, limit, func(q *domain.Question) (string, time.Time) {
		return q.ID, q.CreatedAt
	})

	return &service.QuestionPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
