//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/pagination"
	"github.com/cloo-solutions/lectern/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	return pool
}

func createRoom(ctx context.Context, t *testing.T, repo *RoomRepository, name string) *domain.Room {
	room := domain.NewRoom(uuid.NewString(), name, "", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, room))
	return room
}

func createChunk(ctx context.Context, t *testing.T, repo *AudioChunkRepository, roomID, text string, vec []float32) *domain.AudioChunk {
	chunk := &domain.AudioChunk{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		Transcription: text,
		Embedding:     vec,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, chunk))
	return chunk
}

func TestRoomRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	rooms := NewRoomRepository(pool)
	chunks := NewAudioChunkRepository(pool)
	questions := NewQuestionRepository(pool)

	older := createRoom(ctx, t, rooms, "Química")
	time.Sleep(5 * time.Millisecond)
	newer := createRoom(ctx, t, rooms, "Biologia")

	got, err := rooms.GetByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Biologia", got.Name)
	assert.True(t, got.CreatedAt.Equal(newer.CreatedAt))

	_, err = rooms.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	createChunk(ctx, t, chunks, newer.ID, "fotossíntese", testutil.Vector(1))
	require.NoError(t, questions.Create(ctx, domain.NewQuestion(uuid.NewString(), newer.ID, "q", nil, time.Now().UTC())))

	list, err := rooms.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 1, list[0].ChunkCount)
	assert.Equal(t, 1, list[0].QuestionCount)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, 0, list[1].ChunkCount)
}

func TestAudioChunkRepository_Search(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	rooms := NewRoomRepository(pool)
	chunks := NewAudioChunkRepository(pool)

	room := createRoom(ctx, t, rooms, "R2")
	other := createRoom(ctx, t, rooms, "other")

	// cosine similarities to the query (1, 0): 1.0, ~0.89, ~0.45, 0.0
	exact := createChunk(ctx, t, chunks, room.ID, "A aula cobriu fotossíntese", testutil.Vector(1, 0))
	near := createChunk(ctx, t, chunks, room.ID, "fase clara", testutil.Vector(2, 1))
	weak := createChunk(ctx, t, chunks, room.ID, "cloroplastos", testutil.Vector(1, 2))
	createChunk(ctx, t, chunks, room.ID, "orthogonal", testutil.Vector(0, 1))
	createChunk(ctx, t, chunks, room.ID, "mais um", testutil.Vector(1, 3))
	createChunk(ctx, t, chunks, other.ID, "outra sala", testutil.Vector(1, 0))

	matches, err := chunks.Search(ctx, room.ID, testutil.Vector(1, 0), 0.3, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, exact.ID, matches[0].ID)
	assert.Equal(t, near.ID, matches[1].ID)
	assert.Equal(t, weak.ID, matches[2].ID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	for i, m := range matches {
		assert.Greater(t, m.Similarity, 0.3)
		if i > 0 {
			assert.Greater(t, matches[i-1].Similarity, m.Similarity)
		}
	}

	matches, err = chunks.Search(ctx, room.ID, testutil.Vector(0, 0, 1), 0.3, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)

	count, err := chunks.CountByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	got, err := chunks.GetByID(ctx, exact.ID)
	require.NoError(t, err)
	assert.Equal(t, exact.Embedding, got.Embedding)
}

func TestAudioChunkRepository_Create_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	chunks := NewAudioChunkRepository(pool)

	err := chunks.Create(ctx, &domain.AudioChunk{
		ID:            uuid.NewString(),
		RoomID:        uuid.NewString(),
		Transcription: "texto",
		Embedding:     testutil.Vector(1),
		CreatedAt:     time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestQuestionRepository_ListByRoomWithCursor(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	rooms := NewRoomRepository(pool)
	questions := NewQuestionRepository(pool)

	room := createRoom(ctx, t, rooms, "Física")
	base := time.Now().UTC().Truncate(time.Microsecond)
	answer := "Brasília"
	var ids []string
	for i := 0; i < 5; i++ {
		q := domain.NewQuestion(uuid.NewString(), room.ID, "pergunta", nil, base.Add(time.Duration(i)*time.Second))
		if i == 0 {
			q.Answer = &answer
		}
		require.NoError(t, questions.Create(ctx, q))
		ids = append(ids, q.ID)
	}

	page, err := questions.ListByRoomWithCursor(ctx, room.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[4], page.Items[0].ID)
	assert.Equal(t, ids[3], page.Items[1].ID)
	assert.Nil(t, page.Items[0].Answer)

	cursor, err := pagination.DecodeCursor(page.NextCursor)
	require.NoError(t, err)

	page, err = questions.ListByRoomWithCursor(ctx, room.ID, cursor, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, ids[0], page.Items[2].ID)
	require.NotNil(t, page.Items[2].Answer)
	assert.Equal(t, "Brasília", *page.Items[2].Answer)

	got, err := questions.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "pergunta", got.Question)

	_, err = questions.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestRepositories_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	room := createRoom(ctx, t, NewRoomRepositoryWithTx(tx), "Física")
	createChunk(ctx, t, NewAudioChunkRepositoryWithTx(tx), room.ID, "inércia", testutil.Vector(2))
	require.NoError(t, NewQuestionRepositoryWithTx(tx).Create(ctx,
		domain.NewQuestion(uuid.NewString(), room.ID, "q", nil, time.Now().UTC())))

	_, err = NewRoomRepositoryWithTx(tx).GetByID(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(ctx))

	_, err = NewRoomRepository(pool).GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

// A crowded neighbouring room must not push a room's own matches out of the result.
func TestAudioChunkRepository_Search_CrowdedNeighbour(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	rooms := NewRoomRepository(pool)
	chunks := NewAudioChunkRepository(pool)

	crowded := createRoom(ctx, t, rooms, "Auditório")
	for i := range 300 {
		createChunk(ctx, t, chunks, crowded.ID, "eco", testutil.Vector(1, float32(i)*0.001))
	}

	room := createRoom(ctx, t, rooms, "Biologia")
	own := createChunk(ctx, t, chunks, room.ID, "fotossíntese", testutil.Vector(1, 1))

	matches, err := chunks.Search(ctx, room.ID, testutil.Vector(1), 0.3, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, own.ID, matches[0].ID)
	assert.InDelta(t, 0.7071, matches[0].Similarity, 1e-3)
}
