package server

import (
	"net/http"

	"github.com/cloo-solutions/lectern/internal/api/handlers"
	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/repository"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/cloo-solutions/lectern/internal/vectorstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ModelClient is a model provider able to serve every pipeline stage.
type ModelClient interface {
	service.EmbeddingClient
	service.GenerationClient
	service.TranscriptionClient
}

// Dependencies are the process-wide handles the API is built from.
type Dependencies struct {
	Pool  *pgxpool.Pool
	Model ModelClient

	// Store mirrors audio chunks for search. Postgres always keeps the chunks;
	// nil searches Postgres directly.
	Store vectorstore.Index

	// Archiver receives raw audio after ingestion. Nil disables archiving.
	Archiver service.AudioArchiver

	// GenerationBackoff replaces the wait between generation attempts.
	GenerationBackoff service.SleepFunc

	Language            string
	QueryTask           domain.EmbeddingTask
	EmbeddingDimensions int
	MaxAudioBytes       int64
}

// NewHandler wires repositories, services and handlers into the API router.
func NewHandler(deps Dependencies) http.Handler {
	roomRepo := repository.NewRoomRepository(deps.Pool)
	questionRepo := repository.NewQuestionRepository(deps.Pool)

	var store vectorstore.Index = repository.NewAudioChunkRepository(deps.Pool)
	if deps.Store != nil {
		store = vectorstore.NewMirroredStore(store, deps.Store)
	}

	embeddingSvc := service.NewEmbeddingService(deps.Model, deps.EmbeddingDimensions)
	generator := service.NewAnswerGenerator(deps.Model, deps.Language)
	if deps.GenerationBackoff != nil {
		generator = service.NewAnswerGeneratorWithSleep(deps.Model, deps.Language, deps.GenerationBackoff)
	}
	orchestrator := service.NewRetrievalOrchestrator(generator, embeddingSvc, store, deps.QueryTask)

	roomSvc := service.NewRoomService(roomRepo)
	questionSvc := service.NewQuestionService(questionRepo, roomSvc, orchestrator)
	ingestionSvc := service.NewIngestionService(deps.Model, embeddingSvc, store, roomSvc, deps.Language)
	if deps.Archiver != nil {
		ingestionSvc.WithArchiver(deps.Archiver)
	}

	var db handlers.Pinger
	if deps.Pool != nil {
		db = deps.Pool
	}

	return NewRouter(RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(db),
		RoomHandler:     handlers.NewRoomHandler(roomSvc),
		QuestionHandler: handlers.NewQuestionHandler(questionSvc),
		AudioHandler:    handlers.NewAudioHandler(ingestionSvc, deps.MaxAudioBytes),
		MaxAudioBytes:   deps.MaxAudioBytes,
	})
}
