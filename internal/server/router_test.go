package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/lectern/internal/api/handlers"
	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func setupRouter(maxAudio int64) (http.Handler, *MockRoomService, *MockQuestionService, *MockIngestionService) {
	roomSvc := new(MockRoomService)
	questionSvc := new(MockQuestionService)
	ingestSvc := new(MockIngestionService)

	cfg := RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(nil),
		RoomHandler:     handlers.NewRoomHandler(roomSvc),
		QuestionHandler: handlers.NewQuestionHandler(questionSvc),
		AudioHandler:    handlers.NewAudioHandler(ingestSvc, maxAudio),
		MaxAudioBytes:   maxAudio,
	}

	return NewRouter(cfg), roomSvc, questionSvc, ingestSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestRouter_RoomRoutes(t *testing.T) {
	router, roomSvc, _, _ := setupRouter(0)
	room := &domain.Room{ID: "room-1", Name: "Biologia", CreatedAt: time.Now().UTC()}

	roomSvc.On("Create", mock.Anything, service.CreateRoomInput{Name: "Biologia"}).Return(room, nil)
	roomSvc.On("List", mock.Anything).Return([]*domain.RoomSummary{{Room: *room}}, nil)
	roomSvc.On("GetByID", mock.Anything, "room-1").Return(room, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"name":"Biologia"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/room-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	roomSvc.AssertExpectations(t)
}

func TestRouter_QuestionRoutes_PassRoomID(t *testing.T) {
	router, _, questionSvc, _ := setupRouter(0)
	answer := "Brasília"

	questionSvc.On("Create", mock.Anything, service.CreateQuestionInput{RoomID: "room-1", Question: "Capital?"}).
		Return(&domain.Question{ID: "question-1", RoomID: "room-1", Answer: &answer}, nil)
	questionSvc.On("ListByRoom", mock.Anything, service.ListQuestionsInput{RoomID: "room-1", Limit: 20}).
		Return(&service.ListQuestionsOutput{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rooms/room-1/questions", strings.NewReader(`{"question":"Capital?"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"questionId":"question-1","answer":"Brasília"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms/room-1/questions", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	questionSvc.AssertExpectations(t)
}

func TestRouter_QuestionBodyLimit(t *testing.T) {
	router, _, questionSvc, _ := setupRouter(0)

	body := `{"question":"` + strings.Repeat("a", int(maxBodyBytes)) + `"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rooms/room-1/questions", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	questionSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouter_AudioRoute(t *testing.T) {
	router, _, _, ingestSvc := setupRouter(1 << 20)
	audio := []byte("RIFF0000WAVEfmt ")

	ingestSvc.On("Ingest", mock.Anything, "room-1", audio, http.DetectContentType(audio)).
		Return(&domain.AudioChunk{ID: "chunk-1", RoomID: "room-1", Transcription: "texto"}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "aula.wav")
	require.NoError(t, err)
	_, err = part.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/audio", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"chunkId":"chunk-1","transcription":"texto"}`, w.Body.String())
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _ := setupRouter(0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcripts", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAudioBodyLimit(t *testing.T) {
	assert.Equal(t, int64(0), audioBodyLimit(0))
	assert.Equal(t, int64(100)+multipartOverhead, audioBodyLimit(100))
}
