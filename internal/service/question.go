package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/pagination"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

// QuestionRepositoryInterface defines the repository interface for question persistence
type QuestionRepositoryInterface interface {
	Create(ctx context.Context, q *domain.Question) error
	ListByRoomWithCursor(ctx context.Context, roomID string, cursor *pagination.Cursor, limit int) (*QuestionPageResult, error)
}

// RoomLookup resolves a room by ID, returning domain.ErrRoomNotFound when absent
type RoomLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// QuestionAnswerer produces the answer outcome for a question
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, roomID, question, explicitContext string) (Outcome, error)
}

type QuestionPageResult struct {
	Items      []*domain.Question
	NextCursor string
	HasMore    bool
}

// QuestionService creates questions and answers them once, at creation time.
type QuestionService struct {
	repo     QuestionRepositoryInterface
	rooms    RoomLookup
	answerer QuestionAnswerer
	uuidGen  UUIDGenerator
	now      Clock
}

// NewQuestionService creates a new QuestionService instance
func NewQuestionService(repo QuestionRepositoryInterface, rooms RoomLookup, answerer QuestionAnswerer) *QuestionService {
	return NewQuestionServiceWithUUIDGen(repo, rooms, answerer, &DefaultUUIDGenerator{})
}

// NewQuestionServiceWithUUIDGen creates a new QuestionService with custom UUID generator (for testing)
func NewQuestionServiceWithUUIDGen(repo QuestionRepositoryInterface, rooms RoomLookup, answerer QuestionAnswerer, uuidGen UUIDGenerator) *QuestionService {
	return &QuestionService{
		repo:     repo,
		rooms:    rooms,
		answerer: answerer,
		uuidGen:  uuidGen,
		now:      utcNow,
	}
}

// CreateQuestionInput represents the input for asking a question
type CreateQuestionInput struct {
	RoomID   string
	Question string
	Context  string
}

type ListQuestionsInput struct {
	RoomID string
	Cursor string
	Limit  int
}

type ListQuestionsOutput struct {
	Items   []*domain.Question
	Cursor  string
	HasMore bool
}

// Create answers the question and persists exactly one Question row.
// A question that could not be answered is stored with a nil Answer.
func (s *QuestionService) Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error) {
	ctx, span := telemetry.StartSpan(ctx, "question.create", telemetry.SpanAttributes{
		RoomID:    input.RoomID,
		Operation: "create",
	})
	defer span.End()

	if input.RoomID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	if _, err := s.rooms.GetByID(ctx, input.RoomID); err != nil {
		return nil, err
	}

	outcome, err := s.answerer.AnswerQuestion(ctx, input.RoomID, input.Question, input.Context)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if outcome.Kind != OutcomeAnswered {
		log.Printf("question in room %s stored without answer (%s): %v", input.RoomID, outcome.Kind, outcome.Err)
	}

	question := domain.NewQuestion(s.uuidGen.NewString(), input.RoomID, input.Question, outcome.AnswerPtr(), s.now())
	if err := domain.ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, question); err != nil {
		span.SetError(err)
		return nil, asPersistenceError(err)
	}

	span.SetTag("question_id", question.ID)
	span.SetTag("context_source", string(outcome.Source))
	return question, nil
}

// ListByRoom returns a room's questions, newest first
func (s *QuestionService) ListByRoom(ctx context.Context, input ListQuestionsInput) (*ListQuestionsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "QuestionService.ListByRoom", telemetry.SpanAttributes{
		RoomID:    input.RoomID,
		Operation: "list",
	})
	defer span.End()

	if _, err := s.rooms.GetByID(ctx, input.RoomID); err != nil {
		return nil, err
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	result, err := s.repo.ListByRoomWithCursor(ctx, input.RoomID, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListQuestionsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// asPersistenceError keeps domain errors from the repository as they are and
// reports anything else as domain.ErrPersistence.
func asPersistenceError(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.Wrap(domain.ErrPersistence, err)
}
