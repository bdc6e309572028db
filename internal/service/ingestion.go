package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

// TranscriptionClient defines the speech-to-text call of a model provider
type TranscriptionClient interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

// ChunkStore defines where ingested chunks are written
type ChunkStore interface {
	Create(ctx context.Context, chunk *domain.AudioChunk) error
}

// AudioArchiver stores the raw audio of an ingested chunk
type AudioArchiver interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// IngestionService turns recorded audio into a searchable AudioChunk.
type IngestionService struct {
	transcriber TranscriptionClient
	embedder    QueryEmbedder
	store       ChunkStore
	rooms       RoomLookup
	archiver    AudioArchiver
	language    string
	uuidGen     UUIDGenerator
	now         Clock
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(transcriber TranscriptionClient, embedder QueryEmbedder, store ChunkStore, rooms RoomLookup, language string) *IngestionService {
	return NewIngestionServiceWithUUIDGen(transcriber, embedder, store, rooms, language, &DefaultUUIDGenerator{})
}

// NewIngestionServiceWithUUIDGen creates a new IngestionService with custom UUID generator (for testing)
func NewIngestionServiceWithUUIDGen(transcriber TranscriptionClient, embedder QueryEmbedder, store ChunkStore, rooms RoomLookup, language string, uuidGen UUIDGenerator) *IngestionService {
	if language == "" {
		language = DefaultLanguage
	}
	return &IngestionService{
		transcriber: transcriber,
		embedder:    embedder,
		store:       store,
		rooms:       rooms,
		language:    language,
		uuidGen:     uuidGen,
		now:         utcNow,
	}
}

// WithArchiver enables archiving of the raw audio after a successful insert.
func (s *IngestionService) WithArchiver(archiver AudioArchiver) *IngestionService {
	s.archiver = archiver
	return s
}

// ArchiveKey is the object key raw audio is archived under.
func ArchiveKey(roomID, chunkID string) string {
	return fmt.Sprintf("rooms/%s/audio/%s", roomID, chunkID)
}

// Ingest transcribes audio, embeds the transcription and stores the chunk.
// The insert is the last step, so a failure never leaves a partial chunk behind.
func (s *IngestionService) Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (*domain.AudioChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "ingest.audio", telemetry.SpanAttributes{
		RoomID:    roomID,
		Operation: "ingest",
	})
	defer span.End()

	if roomID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if len(audio) == 0 {
		return nil, domain.ErrEmptyAudio
	}
	if strings.TrimSpace(mimeType) == "" {
		return nil, domain.ErrMissingMimeType
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	log.Printf("transcribing %d bytes of %s audio for room %s", len(audio), mimeType, roomID)
	transcription, err := s.transcriber.Transcribe(ctx, audio, mimeType, s.language)
	if err != nil {
		span.SetError(err)
		return nil, domain.Wrap(domain.ErrTranscription, err)
	}
	transcription = strings.TrimSpace(transcription)
	if transcription == "" {
		return nil, domain.ErrTranscription
	}

	embedding, err := s.embedder.Embed(ctx, transcription, domain.EmbeddingTaskRetrievalDocument)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	chunk := &domain.AudioChunk{
		ID:            s.uuidGen.NewString(),
		RoomID:        roomID,
		Transcription: transcription,
		Embedding:     embedding,
		CreatedAt:     s.now(),
	}
	if err := domain.ValidateAudioChunk(chunk); err != nil {
		return nil, domain.Wrap(domain.ErrPersistence, err)
	}

	if err := s.store.Create(ctx, chunk); err != nil {
		span.SetError(err)
		return nil, asPersistenceError(err)
	}
	span.SetTag("chunk_id", chunk.ID)
	log.Printf("audio chunk %s saved for room %s", chunk.ID, roomID)

	s.archive(ctx, chunk, audio, mimeType)

	return chunk, nil
}

func (s *IngestionService) archive(ctx context.Context, chunk *domain.AudioChunk, audio []byte, mimeType string) {
	if s.archiver == nil {
		return
	}
	key := ArchiveKey(chunk.RoomID, chunk.ID)
	if err := s.archiver.PutObject(ctx, key, audio, mimeType); err != nil {
		log.Printf("failed to archive audio %s: %v", key, err)
		telemetry.CaptureError(ctx, err)
	}
}
