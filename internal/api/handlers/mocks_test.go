package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

type MockRoomService struct {
	mock.Mock
}

func (m *MockRoomService) Create(ctx context.Context, input service.CreateRoomInput) (*domain.Room, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomService) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomService) List(ctx context.Context) ([]*domain.RoomSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RoomSummary), args.Error(1)
}

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) Create(ctx context.Context, input service.CreateQuestionInput) (*domain.Question, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionService) ListByRoom(ctx context.Context, input service.ListQuestionsInput) (*service.ListQuestionsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListQuestionsOutput), args.Error(1)
}

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (*domain.AudioChunk, error) {
	args := m.Called(ctx, roomID, audio, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AudioChunk), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var testTime = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestRoom() *domain.Room {
	return &domain.Room{
		ID:          "room-1",
		Name:        "Biologia",
		Description: "Turma A",
		CreatedAt:   testTime,
	}
}

// requestWithRoom builds a request as chi would hand it to a handler
// mounted under /rooms/{roomId}.
func requestWithRoom(method, url, roomID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("roomId", roomID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func strPtr(s string) *string {
	return &s
}
