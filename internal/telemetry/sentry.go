// Package telemetry wraps Sentry tracing for the request pipeline: one
// transaction per HTTP request with child spans for each model call, vector
// search and database write.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "lectern"

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// DefaultSampleRate traces everything in development and a tenth of requests
// elsewhere. Every request makes at least one model call, so full sampling in
// production is expensive.
func DefaultSampleRate(environment string) float64 {
	if environment == "" || environment == "development" {
		return 1.0
	}
	return 0.1
}

// Init initializes Sentry and returns a function that flushes pending events.
// An empty DSN, or a DSN Sentry rejects, leaves tracing off and returns a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = DefaultSampleRate(cfg.Environment)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:           cfg.DSN,
		Environment:   cfg.Environment,
		EnableTracing: true,
		Debug:         cfg.Debug,
		ServerName:    serviceName,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			return sampleRate(ctx.Span, cfg.TracesSampleRate)
		}),
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without tracing): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// sampleRate drops health probes and keeps child spans with their parent.
func sampleRate(span *sentry.Span, rate float64) float64 {
	if span == nil {
		return rate
	}
	if strings.HasSuffix(span.Name, " /health") {
		return 0
	}

	var noParent sentry.SpanID
	if span.ParentSpanID != noParent {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// SpanAttributes are the tags a pipeline span can carry. Empty fields are skipped.
type SpanAttributes struct {
	RoomID     string
	QuestionID string
	ChunkID    string
	Source     string
	Operation  string
}

// Span is a nil-safe handle on a sentry span.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span as failed and reports err.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

// SetTag sets a tag on the span once the value is known.
func (s *Span) SetTag(name, value string) {
	if s.inner != nil && value != "" {
		s.inner.SetTag(name, value)
	}
}

// SetData attaches arbitrary data to the span.
func (s *Span) SetData(name string, value interface{}) {
	if s.inner != nil {
		s.inner.SetData(name, value)
	}
}

func setAttributes(span *sentry.Span, attrs SpanAttributes) {
	tags := map[string]string{
		"room_id":        attrs.RoomID,
		"question_id":    attrs.QuestionID,
		"chunk_id":       attrs.ChunkID,
		"context_source": attrs.Source,
	}
	for name, value := range tags {
		if value != "" {
			span.SetTag(name, value)
		}
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}
}

// StartSpan starts a child of the span in ctx, or a new transaction when ctx
// carries none (e.g. calls from lecternd room commands).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	setAttributes(span, attrs)

	return span.Context(), &Span{inner: span}
}

// CaptureError reports err on the hub of ctx, falling back to the global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// RecordRetry leaves a breadcrumb for a failed attempt that will be retried,
// so the event reported if every attempt fails shows the whole sequence.
func RecordRetry(ctx context.Context, category string, attempt int, delay time.Duration, err error) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   fmt.Sprintf("attempt %d failed, retrying in %s: %v", attempt, delay, err),
		Level:     sentry.LevelWarning,
		Timestamp: time.Now(),
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}
