package service

import (
	"context"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the model embedding call
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error) {
	args := m.Called(ctx, text, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockGenerationClient mocks the model text generation call
type MockGenerationClient struct {
	mock.Mock
}

func (m *MockGenerationClient) GenerateText(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

// MockTranscriptionClient mocks the model speech-to-text call
type MockTranscriptionClient struct {
	mock.Mock
}

func (m *MockTranscriptionClient) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	args := m.Called(ctx, audio, mimeType, language)
	return args.String(0), args.Error(1)
}

// MockAnswerer mocks the answer generator
type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Generate(ctx context.Context, question string, passages []string) (string, error) {
	args := m.Called(ctx, question, passages)
	return args.String(0), args.Error(1)
}

// MockQueryEmbedder mocks the embedding service
type MockQueryEmbedder struct {
	mock.Mock
}

func (m *MockQueryEmbedder) Embed(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error) {
	args := m.Called(ctx, text, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChunkSearcher mocks the vector similarity store query side
type MockChunkSearcher struct {
	mock.Mock
}

func (m *MockChunkSearcher) Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error) {
	args := m.Called(ctx, roomID, query, minSimilarity, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChunkMatch), args.Error(1)
}

// MockChunkStore mocks the chunk insert side of the store
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) Create(ctx context.Context, chunk *domain.AudioChunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

// MockAudioArchiver mocks the object storage archive
type MockAudioArchiver struct {
	mock.Mock
}

func (m *MockAudioArchiver) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

// MockRoomRepository is a mock implementation of RoomRepositoryInterface
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomRepository) List(ctx context.Context) ([]*domain.RoomSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RoomSummary), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepositoryInterface
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuestionRepository) ListByRoomWithCursor(ctx context.Context, roomID string, cursor *pagination.Cursor, limit int) (*QuestionPageResult, error) {
	args := m.Called(ctx, roomID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QuestionPageResult), args.Error(1)
}

// MockQuestionAnswerer mocks the retrieval orchestrator
type MockQuestionAnswerer struct {
	mock.Mock
}

func (m *MockQuestionAnswerer) AnswerQuestion(ctx context.Context, roomID, question, explicitContext string) (Outcome, error) {
	args := m.Called(ctx, roomID, question, explicitContext)
	return args.Get(0).(Outcome), args.Error(1)
}

// MockUUIDGenerator returns the given IDs in order
type MockUUIDGenerator struct {
	uuids []string
	index int
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.index >= len(m.uuids) {
		return "default-uuid"
	}
	uuid := m.uuids[m.index]
	m.index++
	return uuid
}

func testRoom(id string) *domain.Room {
	return &domain.Room{ID: id, Name: "Biologia"}
}
