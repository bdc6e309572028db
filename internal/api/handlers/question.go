package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/lectern/internal/api"
	"github.com/cloo-solutions/lectern/internal/api/middleware"
	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/service"
)

type QuestionService interface {
	Create(ctx context.Context, input service.CreateQuestionInput) (*domain.Question, error)
	ListByRoom(ctx context.Context, input service.ListQuestionsInput) (*service.ListQuestionsOutput, error)
}

type QuestionHandler struct {
	svc QuestionService
}

func NewQuestionHandler(svc QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

type CreateQuestionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// CreateQuestionResponse carries a null answer when none could be produced.
type CreateQuestionResponse struct {
	QuestionID string  `json:"questionId"`
	Answer     *string `json:"answer"`
}

type QuestionResponse struct {
	ID        string  `json:"id"`
	RoomID    string  `json:"roomId"`
	Question  string  `json:"question"`
	Answer    *string `json:"answer"`
	CreatedAt string  `json:"createdAt"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Cursor    string              `json:"cursor,omitempty"`
	HasMore   bool                `json:"has_more"`
}

func questionToResponse(q *domain.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:        q.ID,
		RoomID:    q.RoomID,
		Question:  q.Question,
		Answer:    q.Answer,
		CreatedAt: q.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	roomID := middleware.RoomID(r)
	if roomID == "" {
		api.Error(w, http.StatusBadRequest, "roomId is required")
		return
	}

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.svc.Create(r.Context(), service.CreateQuestionInput{
		RoomID:   roomID,
		Question: req.Question,
		Context:  req.Context,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, CreateQuestionResponse{
		QuestionID: question.ID,
		Answer:     question.Answer,
	})
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID := middleware.RoomID(r)
	if roomID == "" {
		api.Error(w, http.StatusBadRequest, "roomId is required")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.ListByRoom(r.Context(), service.ListQuestionsInput{
		RoomID: roomID,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*QuestionResponse, len(output.Items))
	for i, q := range output.Items {
		responses[i] = questionToResponse(q)
	}

	api.JSON(w, http.StatusOK, QuestionListResponse{
		Questions: responses,
		Cursor:    output.Cursor,
		HasMore:   output.HasMore,
	})
}
