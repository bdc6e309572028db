package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cloo-solutions/lectern/internal/api"
	"github.com/cloo-solutions/lectern/internal/api/middleware"
	"github.com/cloo-solutions/lectern/internal/domain"
)

// Multipart fields accepted for the uploaded audio, in lookup order.
var audioFields = []string{"file", "audio"}

const (
	multipartMemory      = 8 << 20
	errAudioRequired     = "Audio file is required."
	errAudioTooLarge     = "audio file too large"
	errAudioProcessing   = "Failed to process audio"
	defaultAudioMimeType = "application/octet-stream"
)

type IngestionService interface {
	Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (*domain.AudioChunk, error)
}

type AudioHandler struct {
	svc      IngestionService
	maxBytes int64
}

// NewAudioHandler creates a handler that accepts audio files up to maxBytes.
// A non-positive maxBytes disables the per-file check.
func NewAudioHandler(svc IngestionService, maxBytes int64) *AudioHandler {
	return &AudioHandler{svc: svc, maxBytes: maxBytes}
}

type UploadAudioResponse struct {
	ChunkID       string `json:"chunkId"`
	Transcription string `json:"transcription"`
}

func (h *AudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	roomID := middleware.RoomID(r)
	if roomID == "" {
		api.Error(w, http.StatusBadRequest, "roomId is required")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, errAudioTooLarge)
			return
		}
		api.Error(w, http.StatusBadRequest, errAudioRequired)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := formAudio(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, errAudioRequired)
		return
	}
	defer file.Close()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		api.Error(w, http.StatusRequestEntityTooLarge, errAudioTooLarge)
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		api.ErrorWithDetails(w, http.StatusInternalServerError, errAudioProcessing, err.Error())
		return
	}
	if len(audio) == 0 {
		api.Error(w, http.StatusBadRequest, errAudioRequired)
		return
	}

	mimeType := audioMimeType(header, audio)
	log.Printf("Processing audio file: room=%s filename=%s mimetype=%s size=%d", roomID, header.Filename, mimeType, len(audio))

	chunk, err := h.svc.Ingest(r.Context(), roomID, audio, mimeType)
	if err != nil {
		if api.DomainErrorToHTTP(err) < http.StatusInternalServerError {
			api.HandleError(w, err)
			return
		}
		log.Printf("Error processing audio for room %s: %v", roomID, err)
		api.ErrorWithDetails(w, http.StatusInternalServerError, errAudioProcessing, err.Error())
		return
	}

	api.JSON(w, http.StatusCreated, UploadAudioResponse{
		ChunkID:       chunk.ID,
		Transcription: chunk.Transcription,
	})
}

func formAudio(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range audioFields {
		file, header, err := r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, err
		}
	}
	return nil, nil, http.ErrMissingFile
}

// audioMimeType prefers the part's declared type and sniffs the content
// when the client sent none or a generic one.
func audioMimeType(header *multipart.FileHeader, audio []byte) string {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && declared != defaultAudioMimeType {
		return declared
	}
	return http.DetectContentType(audio)
}
