package service

import (
	"context"
	"log"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

const (
	// DefaultMinSimilarity is the cosine similarity a chunk must exceed to be used as context.
	DefaultMinSimilarity = 0.3
	// DefaultSearchLimit is the number of chunks retrieved for one question.
	DefaultSearchLimit = 3
)

// ContextSource records where the passages of an answer came from.
type ContextSource string

const (
	ContextSourceNone      ContextSource = ""
	ContextSourceExplicit  ContextSource = "explicit"
	ContextSourceGeneral   ContextSource = "general"
	ContextSourceRetrieved ContextSource = "retrieved"
)

// OutcomeKind is the terminal state of one orchestration.
type OutcomeKind int

const (
	OutcomeAnswered OutcomeKind = iota
	OutcomeGenerationFailed
	OutcomeNoContext
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAnswered:
		return "answered"
	case OutcomeGenerationFailed:
		return "generation_failed"
	case OutcomeNoContext:
		return "no_context"
	}
	return "unknown"
}

// Outcome is the result of RetrievalOrchestrator.AnswerQuestion.
// Answer is only meaningful when Kind is OutcomeAnswered.
type Outcome struct {
	Kind     OutcomeKind
	Answer   string
	Source   ContextSource
	Passages []string
	Err      error
}

// AnswerPtr returns the answer to persist, or nil when there is none.
func (o Outcome) AnswerPtr() *string {
	if o.Kind != OutcomeAnswered {
		return nil
	}
	answer := o.Answer
	return &answer
}

// Answerer defines the answer generation step
type Answerer interface {
	Generate(ctx context.Context, question string, passages []string) (string, error)
}

// QueryEmbedder defines the embedding step of the retrieval fallback
type QueryEmbedder interface {
	Embed(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error)
}

// ChunkSearcher defines the similarity search over a room's chunks
type ChunkSearcher interface {
	Search(ctx context.Context, roomID string, query []float32, minSimilarity float64, limit int) ([]*domain.ChunkMatch, error)
}

// RetrievalOrchestrator decides which context a question is answered with.
//
// Explicit context always wins. Without it, a general-knowledge answer is tried
// first and the room's transcripts are searched only if that attempt fails.
type RetrievalOrchestrator struct {
	generator     Answerer
	embedder      QueryEmbedder
	searcher      ChunkSearcher
	queryTask     domain.EmbeddingTask
	minSimilarity float64
	limit         int
}

// NewRetrievalOrchestrator creates a RetrievalOrchestrator. queryTask is the
// embedding profile used for the question vector.
func NewRetrievalOrchestrator(generator Answerer, embedder QueryEmbedder, searcher ChunkSearcher, queryTask domain.EmbeddingTask) *RetrievalOrchestrator {
	if !queryTask.IsValid() {
		queryTask = domain.EmbeddingTaskRetrievalDocument
	}
	return &RetrievalOrchestrator{
		generator:     generator,
		embedder:      embedder,
		searcher:      searcher,
		queryTask:     queryTask,
		minSimilarity: DefaultMinSimilarity,
		limit:         DefaultSearchLimit,
	}
}

// AnswerQuestion produces the outcome for one question. Generation failures
// are part of the outcome; embedding and search failures are returned as errors.
func (o *RetrievalOrchestrator) AnswerQuestion(ctx context.Context, roomID, question, explicitContext string) (Outcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "orchestrator.answer", telemetry.SpanAttributes{
		RoomID:    roomID,
		Operation: "answer",
	})
	defer span.End()

	if explicitContext != "" {
		outcome := o.generate(ctx, question, []string{explicitContext}, ContextSourceExplicit)
		span.SetTag("context_source", string(outcome.Source))
		return outcome, nil
	}

	general := o.generate(ctx, question, nil, ContextSourceGeneral)
	if general.Kind == OutcomeAnswered {
		span.SetTag("context_source", string(general.Source))
		return general, nil
	}
	log.Printf("general-knowledge answer failed for room %s, falling back to retrieval: %v", roomID, general.Err)

	vector, err := o.embedder.Embed(ctx, question, o.queryTask)
	if err != nil {
		span.SetError(err)
		return Outcome{}, err
	}

	matches, err := o.searcher.Search(ctx, roomID, vector, o.minSimilarity, o.limit)
	if err != nil {
		span.SetError(err)
		return Outcome{}, err
	}

	if len(matches) == 0 {
		log.Printf("no matching chunks found in room %s", roomID)
		return Outcome{Kind: OutcomeNoContext, Err: general.Err}, nil
	}

	outcome := o.generate(ctx, question, domain.Transcriptions(matches), ContextSourceRetrieved)
	span.SetTag("context_source", string(outcome.Source))
	return outcome, nil
}

func (o *RetrievalOrchestrator) generate(ctx context.Context, question string, passages []string, source ContextSource) Outcome {
	answer, err := o.generator.Generate(ctx, question, passages)
	if err != nil {
		return Outcome{Kind: OutcomeGenerationFailed, Source: source, Passages: passages, Err: err}
	}
	return Outcome{Kind: OutcomeAnswered, Answer: answer, Source: source, Passages: passages}
}
