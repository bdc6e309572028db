package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/lectern/internal/api"
	"github.com/cloo-solutions/lectern/internal/api/middleware"
	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/service"
)

type RoomService interface {
	Create(ctx context.Context, input service.CreateRoomInput) (*domain.Room, error)
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.RoomSummary, error)
}

type RoomHandler struct {
	svc RoomService
}

func NewRoomHandler(svc RoomService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RoomResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"createdAt"`
	QuestionsCount *int   `json:"questionsCount,omitempty"`
	ChunksCount    *int   `json:"chunksCount,omitempty"`
}

type RoomListResponse struct {
	Rooms []*RoomResponse `json:"rooms"`
}

func roomToResponse(r *domain.Room) *RoomResponse {
	return &RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.svc.Create(r.Context(), service.CreateRoomInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, roomToResponse(room))
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := middleware.RoomID(r)
	if roomID == "" {
		api.Error(w, http.StatusBadRequest, "roomId is required")
		return
	}

	room, err := h.svc.GetByID(r.Context(), roomID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, roomToResponse(room))
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*RoomResponse, len(rooms))
	for i, summary := range rooms {
		resp := roomToResponse(&summary.Room)
		questions, chunks := summary.QuestionCount, summary.ChunkCount
		resp.QuestionsCount = &questions
		resp.ChunksCount = &chunks
		responses[i] = resp
	}

	api.JSON(w, http.StatusOK, RoomListResponse{Rooms: responses})
}
