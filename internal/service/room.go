package service

import (
	"context"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

// RoomRepositoryInterface defines the repository interface for room persistence
type RoomRepositoryInterface interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.RoomSummary, error)
}

// RoomService handles business logic for rooms
type RoomService struct {
	repo    RoomRepositoryInterface
	uuidGen UUIDGenerator
	now     Clock
}

// NewRoomService creates a new RoomService instance
func NewRoomService(repo RoomRepositoryInterface) *RoomService {
	return NewRoomServiceWithUUIDGen(repo, &DefaultUUIDGenerator{})
}

// NewRoomServiceWithUUIDGen creates a new RoomService with custom UUID generator (for testing)
func NewRoomServiceWithUUIDGen(repo RoomRepositoryInterface, uuidGen UUIDGenerator) *RoomService {
	return &RoomService{
		repo:    repo,
		uuidGen: uuidGen,
		now:     utcNow,
	}
}

// CreateRoomInput represents the input for creating a room
type CreateRoomInput struct {
	Name        string
	Description string
}

// Create creates a new room
func (s *RoomService) Create(ctx context.Context, input CreateRoomInput) (*domain.Room, error) {
	ctx, span := telemetry.StartSpan(ctx, "RoomService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	room := domain.NewRoom(s.uuidGen.NewString(), input.Name, input.Description, s.now())
	if err := domain.ValidateRoom(room); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		span.SetError(err)
		return nil, err
	}

	return room, nil
}

// GetByID retrieves a room by ID
func (s *RoomService) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.repo.GetByID(ctx, id)
}

// List returns every room, newest first, with its question and chunk counts
func (s *RoomService) List(ctx context.Context) ([]*domain.RoomSummary, error) {
	return s.repo.List(ctx)
}
