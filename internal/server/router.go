package server

import (
	"net/http"

	"github.com/cloo-solutions/lectern/internal/api/handlers"
	"github.com/cloo-solutions/lectern/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	maxBodyBytes int64 = 1 * 1024 * 1024

	// multipartOverhead leaves room for boundaries and part headers around
	// an audio file of the configured maximum size.
	multipartOverhead int64 = 64 * 1024
)

type RouterConfig struct {
	HealthHandler   *handlers.HealthHandler
	RoomHandler     *handlers.RoomHandler
	QuestionHandler *handlers.QuestionHandler
	AudioHandler    *handlers.AudioHandler
	MaxAudioBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)

	r.Get("/health", cfg.HealthHandler.Check)

	r.Route("/rooms", func(r chi.Router) {
		r.With(middleware.MaxBodyBytes(maxBodyBytes)).Post("/", cfg.RoomHandler.Create)
		r.Get("/", cfg.RoomHandler.List)

		r.Route("/{"+middleware.RoomIDParam+"}", func(r chi.Router) {
			r.Get("/", cfg.RoomHandler.Get)

			r.With(middleware.MaxBodyBytes(maxBodyBytes)).Post("/questions", cfg.QuestionHandler.Create)
			r.Get("/questions", cfg.QuestionHandler.List)

			r.With(middleware.MaxBodyBytes(audioBodyLimit(cfg.MaxAudioBytes))).Post("/audio", cfg.AudioHandler.Upload)
		})
	})

	return r
}

func audioBodyLimit(maxAudio int64) int64 {
	if maxAudio <= 0 {
		return 0
	}
	return maxAudio + multipartOverhead
}
