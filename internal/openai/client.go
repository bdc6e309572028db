package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cloo-solutions/lectern/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultChatModel is the OpenAI model used for answers
	DefaultChatModel = openai.GPT4oMini
	// DefaultEmbeddingDimensions matches the Gemini default so both providers fit the same column
	DefaultEmbeddingDimensions = 768
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyAudio is returned when audio is empty
	ErrEmptyAudio = errors.New("audio cannot be empty")
	// ErrEmptyResponse is returned when the model returns no text
	ErrEmptyResponse = errors.New("openai response is empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// ModelAPI defines the raw model calls the Client validates and wraps
type ModelAPI interface {
	CreateEmbeddings(ctx context.Context, text string, dimensions int) ([]float32, error)
	CreateChatCompletion(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
	CreateTranscription(ctx context.Context, audio []byte, filename, language string) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        ModelAPI
	dimensions int
	limiter    *rate.Limiter
}

type OpenAIAdapter struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey, chatModel string, embeddingModel openai.EmbeddingModel) *OpenAIAdapter {
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client:         openai.NewClient(apiKey),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string, dimensions int) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      a.embeddingModel,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion sends the prompt as a single user message.
// OpenAI has no top-K sampling or per-request safety thresholds, so those options are ignored.
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   int(opts.MaxOutputTokens),
		Stop:        opts.StopSequences,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// CreateTranscription calls the Whisper transcription endpoint
func (a *OpenAIAdapter) CreateTranscription(ctx context.Context, audio []byte, filename, language string) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

type Config struct {
	APIKey              string
	ChatModel           string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	RequestsPerSecond   float64
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	c := &Client{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.ChatModel, cfg.EmbeddingModel),
		dimensions: dimensions,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(math.Ceil(cfg.RequestsPerSecond)))
	}
	return c
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
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

// GenerateEmbedding generates an embedding for the given text.
// OpenAI embeddings are symmetric, so the task profile does not change the request.
func (c *Client) GenerateEmbedding(ctx context.Context, text string, _ domain.EmbeddingTask) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text, c.dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// GenerateText sends a single-turn prompt and returns the response text.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyText
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	text, err := c.api.CreateChatCompletion(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Transcribe converts recorded audio into text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	text, err := c.api.CreateTranscription(ctx, audio, audioFilename(mimeType), LanguageCode(language))
	if err != nil {
		return "", fmt.Errorf("failed to create transcription: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// LanguageCode maps a language name to the ISO-639-1 code Whisper expects.
// Unknown languages return "" so Whisper auto-detects.
func LanguageCode(language string) string {
	l := strings.ToLower(language)
	switch {
	case strings.Contains(l, "portuguese"), strings.Contains(l, "português"):
		return "pt"
	case strings.Contains(l, "english"):
		return "en"
	case strings.Contains(l, "spanish"), strings.Contains(l, "español"):
		return "es"
	case strings.Contains(l, "french"):
		return "fr"
	case strings.Contains(l, "german"):
		return "de"
	}
	return ""
}

// audioFilename picks a file name whose extension Whisper can sniff the format from.
func audioFilename(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch strings.ToLower(base) {
	case "audio/mpeg", "audio/mp3":
		return "audio.mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "audio.wav"
	case "audio/ogg":
		return "audio.ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "audio.m4a"
	case "audio/flac":
		return "audio.flac"
	default:
		return "audio.webm"
	}
}
