package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message.
// This lets a wrapped error match the sentinel it was derived from.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of a sentinel DomainError carrying cause.
func Wrap(sentinel *DomainError, cause error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, cause)
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeTranscription = "TRANSCRIPTION_ERROR"
	ErrCodeEmbedding     = "EMBEDDING_ERROR"
	ErrCodeGeneration    = "GENERATION_ERROR"
	ErrCodePersistence   = "PERSISTENCE_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is required")
	ErrEmptyRoomName        = NewDomainError(ErrCodeValidation, "room name is required")
	ErrEmptyAudio           = NewDomainError(ErrCodeValidation, "audio file is required")
	ErrMissingMimeType      = NewDomainError(ErrCodeValidation, "audio mime type is required")
)

// Not found errors
var (
	ErrRoomNotFound       = NewDomainError(ErrCodeNotFound, "room not found")
	ErrQuestionNotFound   = NewDomainError(ErrCodeNotFound, "question not found")
	ErrAudioChunkNotFound = NewDomainError(ErrCodeNotFound, "audio chunk not found")
)

// Pipeline errors
var (
	ErrTranscription = NewDomainError(ErrCodeTranscription, "unable to transcribe audio")
	ErrEmbedding     = NewDomainError(ErrCodeEmbedding, "unable to generate embeddings")
	ErrGeneration    = NewDomainError(ErrCodeGeneration, "unable to generate answer")
	ErrPersistence   = NewDomainError(ErrCodePersistence, "failed to persist record")
)
