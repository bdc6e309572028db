package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoomHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, service.CreateRoomInput{Name: "Biologia", Description: "Turma A"}).
		Return(newTestRoom(), nil)

	req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"name":"Biologia","description":"Turma A"}`))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "room-1", resp.ID)
	assert.Equal(t, "Biologia", resp.Name)
	assert.Equal(t, "2026-03-10T14:00:00Z", resp.CreatedAt)
	assert.Nil(t, resp.QuestionsCount)
}

func TestRoomHandler_Create_InvalidBody(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Create(w, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomHandler_Create_EmptyName(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyRoomName)

	w := httptest.NewRecorder()
	handler.Create(w, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"name":""}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "room name is required")
}

func TestRoomHandler_Get(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "room-1").Return(newTestRoom(), nil)
	mockSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrRoomNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, requestWithRoom(http.MethodGet, "/rooms/room-1", "room-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Biologia"`)

	w = httptest.NewRecorder()
	handler.Get(w, requestWithRoom(http.MethodGet, "/rooms/missing", "missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandler_List(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	mockSvc.On("List", mock.Anything).Return([]*domain.RoomSummary{
		{Room: *newTestRoom(), QuestionCount: 2, ChunkCount: 0},
	}, nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RoomListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 1)
	require.NotNil(t, resp.Rooms[0].QuestionsCount)
	assert.Equal(t, 2, *resp.Rooms[0].QuestionsCount)
	require.NotNil(t, resp.Rooms[0].ChunksCount)
	assert.Equal(t, 0, *resp.Rooms[0].ChunksCount)
}

func TestRoomHandler_List_Error(t *testing.T) {
	mockSvc := new(MockRoomService)
	handler := NewRoomHandler(mockSvc)

	mockSvc.On("List", mock.Anything).Return(nil, errors.New("connection refused"))

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
