// Package gemini owns the connection to the Gemini API and exposes the three
// model capabilities the pipelines need: text generation, audio transcription
// and text embeddings.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cloo-solutions/lectern/internal/domain"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	DefaultModel               = "gemini-1.5-pro"
	DefaultEmbeddingModel      = "text-embedding-004"
	DefaultEmbeddingDimensions = 768
)

var (
	// ErrEmptyText is returned when a prompt or embedding input is empty.
	ErrEmptyText = errors.New("gemini: text cannot be empty")
	// ErrEmptyAudio is returned when Transcribe is called without audio bytes.
	ErrEmptyAudio = errors.New("gemini: audio cannot be empty")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("gemini: response is empty")
	// ErrNoEmbedding is returned when the API response contains no embedding data.
	ErrNoEmbedding = errors.New("gemini: no embedding in response")
	// ErrDimensionMismatch is returned when the embedding length differs from the configured dimensions.
	ErrDimensionMismatch = errors.New("gemini: embedding dimension mismatch")
)

// ModelsAPI is the subset of the genai Models service used by Client.
type ModelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config configures a Client.
type Config struct {
	APIKey              string
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int
	// RequestsPerSecond throttles all calls made through the client. Zero disables throttling.
	RequestsPerSecond float64
}

// Client is the single process-wide handle on the Gemini API.
// It is safe for concurrent use.
type Client struct {
	models         ModelsAPI
	model          string
	embeddingModel string
	dimensions     int
	limiter        *rate.Limiter
}

// NewClient connects to the Gemini API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(genaiClient.Models, cfg), nil
}

func newClient(models ModelsAPI, cfg Config) *Client {
	c := &Client{
		models:         models,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.EmbeddingDimensions,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		c.dimensions = DefaultEmbeddingDimensions
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Dimensions returns the embedding size produced by GenerateEmbedding.
func (c *Client) Dimensions() int {
	return c.dimensions
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// GenerateText sends a single-turn prompt and returns the response text.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyText
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, generateConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Transcribe converts recorded audio into text in the given language.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(TranscriptionPrompt(language)),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateEmbedding returns the embedding vector for text using the given task profile.
func (c *Client) GenerateEmbedding(ctx context.Context, text string, task domain.EmbeddingTask) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	//nolint:gosec // G115: dimensions is bounded by math.MaxInt32 in newClient
	dim := int32(c.dimensions)
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	resp, err := c.models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType:             string(task),
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrNoEmbedding
	}

	values := resp.Embeddings[0].Values
	if len(values) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), c.dimensions)
	}

	out := make([]float32, len(values))
	copy(out, values)
	return out, nil
}

// TranscriptionPrompt is the instruction sent alongside the audio part.
func TranscriptionPrompt(language string) string {
	return fmt.Sprintf(
		"Transcribe the audio into %s. Be accurate and natural in your transcription. "+
			"Maintain proper punctuation and divide the text into paragraphs where appropriate.",
		language,
	)
}

func generateConfig(opts domain.GenerationOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		TopK:            genai.Ptr(float32(opts.TopK)),
		TopP:            genai.Ptr(opts.TopP),
		MaxOutputTokens: opts.MaxOutputTokens,
		StopSequences:   opts.StopSequences,
	}
	for _, s := range opts.SafetySettings {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return strings.TrimSpace(resp.Text())
}
