package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/telemetry"
)

// MaxGenerationAttempts is the total number of model calls Generate makes
// before giving up.
const MaxGenerationAttempts = 3

var (
	errEmptyAnswer = errors.New("model response is empty")
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// GenerationClient defines the text generation call of a model provider
type GenerationClient interface {
	GenerateText(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
}

// GenerationError is returned by AnswerGenerator once every attempt has failed.
// It unwraps to the last underlying error, joined with the context error when a
// backoff wait was cut short, and matches domain.ErrGeneration.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate answer after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*domain.DomainError)
	return ok && t.Code == domain.ErrCodeGeneration
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// AnswerGenerator turns a question and optional context passages into an answer.
type AnswerGenerator struct {
	client   GenerationClient
	language string
	options  domain.GenerationOptions
	sleep    SleepFunc
}

// NewAnswerGenerator creates an AnswerGenerator answering in language.
func NewAnswerGenerator(client GenerationClient, language string) *AnswerGenerator {
	return NewAnswerGeneratorWithSleep(client, language, sleepContext)
}

// NewAnswerGeneratorWithSleep creates an AnswerGenerator with a custom backoff sleep (for testing)
func NewAnswerGeneratorWithSleep(client GenerationClient, language string, sleep SleepFunc) *AnswerGenerator {
	if language == "" {
		language = DefaultLanguage
	}
	return &AnswerGenerator{
		client:   client,
		language: language,
		options:  DefaultGenerationOptions(),
		sleep:    sleep,
	}
}

// DefaultGenerationOptions returns the sampling parameters used for every answer.
func DefaultGenerationOptions() domain.GenerationOptions {
	return domain.GenerationOptions{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
		StopSequences:   []string{StopSequence},
		SafetySettings: []domain.SafetySetting{
			{Category: domain.HarmCategoryHarassment, Threshold: domain.HarmThresholdBlockMediumAndAbove},
			{Category: domain.HarmCategoryHateSpeech, Threshold: domain.HarmThresholdBlockMediumAndAbove},
			{Category: domain.HarmCategorySexuallyExplicit, Threshold: domain.HarmThresholdBlockMediumAndAbove},
			{Category: domain.HarmCategoryDangerousContent, Threshold: domain.HarmThresholdBlockMediumAndAbove},
		},
	}
}

// BackoffDelay is the wait after failed attempt n: 2^n seconds.
func BackoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// Generate answers question, grounded on passages when any are non-blank.
// After MaxGenerationAttempts failures it returns a *GenerationError.
func (g *AnswerGenerator) Generate(ctx context.Context, question string, passages []string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "answer.generate", telemetry.SpanAttributes{
		Operation: "generate",
	})
	defer span.End()

	prompt := BuildPrompt(g.language, question, passages)
	span.SetData("passages", len(passages))

	var lastErr error
	for attempt := 1; attempt <= MaxGenerationAttempts; attempt++ {
		text, err := g.client.GenerateText(ctx, prompt, g.options)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyAnswer
		}
		if err == nil {
			return postprocess(text), nil
		}

		lastErr = err
		if attempt == MaxGenerationAttempts {
			break
		}

		delay := BackoffDelay(attempt)
		log.Printf("answer generation attempt %d failed, retrying in %s: %v", attempt, delay, err)
		telemetry.RecordRetry(ctx, "generation", attempt, delay, err)
		if err := g.sleep(ctx, delay); err != nil {
			genErr := &GenerationError{Attempts: attempt, Err: errors.Join(lastErr, err)}
			span.SetError(genErr)
			return "", genErr
		}
	}

	genErr := &GenerationError{Attempts: MaxGenerationAttempts, Err: lastErr}
	span.SetError(genErr)
	return "", genErr
}

func postprocess(text string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(text, "\n\n"))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
