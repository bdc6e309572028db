package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockModelAPI is a mock for the OpenAI API
type MockModelAPI struct {
	mock.Mock
}

func (m *MockModelAPI) CreateEmbeddings(ctx context.Context, text string, dimensions int) ([]float32, error) {
	args := m.Called(ctx, text, dimensions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockModelAPI) CreateChatCompletion(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *MockModelAPI) CreateTranscription(ctx context.Context, audio []byte, filename, language string) (string, error) {
	args := m.Called(ctx, audio, filename, language)
	return args.String(0), args.Error(1)
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockModelAPI)
	client := &Client{api: mockAPI, dimensions: 768}

	ctx := context.Background()
	text := "A aula cobriu fotossíntese"
	expectedEmbedding := make([]float32, 768)
	for i := range expectedEmbedding {
		expectedEmbedding[i] = float32(i) * 0.001
	}

	mockAPI.On("CreateEmbeddings", ctx, text, 768).Return(expectedEmbedding, nil)

	embedding, err := client.GenerateEmbedding(ctx, text, domain.EmbeddingTaskRetrievalDocument)

	assert.NoError(t, err)
	assert.Len(t, embedding, 768)
	assert.Equal(t, expectedEmbedding, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	embedding, err := client.GenerateEmbedding(context.Background(), "", domain.EmbeddingTaskRetrievalQuery)

	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockModelAPI)
	client := &Client{api: mockAPI, dimensions: 768}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, "Test text", 768).Return(nil, errors.New("API rate limit exceeded"))

	embedding, err := client.GenerateEmbedding(ctx, "Test text", domain.EmbeddingTaskRetrievalDocument)

	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockModelAPI)
	client := &Client{api: mockAPI, dimensions: 768}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, "Test text", 768).Return(make([]float32, 512), nil)

	embedding, err := client.GenerateEmbedding(ctx, "Test text", domain.EmbeddingTaskRetrievalDocument)

	assert.Nil(t, embedding)
	assert.Equal(t, ErrWrongDimensions, err)
}

func TestClient_GenerateText(t *testing.T) {
	mockAPI := new(MockModelAPI)
	client := &Client{api: mockAPI, dimensions: 768}
	opts := domain.GenerationOptions{Temperature: 0.7, TopP: 0.95, MaxOutputTokens: 1024}

	mockAPI.On("CreateChatCompletion", mock.Anything, "question", opts).Return("\n answer \n", nil).Once()
	text, err := client.GenerateText(context.Background(), "question", opts)
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	mockAPI.On("CreateChatCompletion", mock.Anything, "question", opts).Return("   ", nil).Once()
	_, err = client.GenerateText(context.Background(), "question", opts)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	mockAPI.On("CreateChatCompletion", mock.Anything, "question", opts).Return("", errors.New("boom")).Once()
	_, err = client.GenerateText(context.Background(), "question", opts)
	assert.ErrorContains(t, err, "failed to create chat completion")
}

func TestClient_Transcribe(t *testing.T) {
	mockAPI := new(MockModelAPI)
	client := &Client{api: mockAPI, dimensions: 768}
	audio := []byte("RIFF....WAVE")

	mockAPI.On("CreateTranscription", mock.Anything, audio, "audio.wav", "pt").Return("Bom dia, turma.", nil)

	text, err := client.Transcribe(context.Background(), audio, "audio/wav", "Brazilian Portuguese")

	require.NoError(t, err)
	assert.Equal(t, "Bom dia, turma.", text)
	mockAPI.AssertExpectations(t)
}

func TestClient_Transcribe_EmptyAudio(t *testing.T) {
	client := NewClient("")

	_, err := client.Transcribe(context.Background(), nil, "audio/webm", "English")

	assert.Equal(t, ErrEmptyAudio, err)
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "pt", LanguageCode("Brazilian Portuguese"))
	assert.Equal(t, "en", LanguageCode("English"))
	assert.Equal(t, "es", LanguageCode("Spanish"))
	assert.Equal(t, "", LanguageCode("Klingon"))
}

func TestAudioFilename(t *testing.T) {
	assert.Equal(t, "audio.webm", audioFilename("audio/webm;codecs=opus"))
	assert.Equal(t, "audio.mp3", audioFilename("audio/mpeg"))
	assert.Equal(t, "audio.m4a", audioFilename("audio/mp4"))
	assert.Equal(t, "audio.webm", audioFilename(""))
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key")

	assert.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
	assert.Nil(t, client.limiter)
}

func TestNewClientWithConfig_RateLimit(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "k", EmbeddingDimensions: 1536, RequestsPerSecond: 2})

	assert.Equal(t, 1536, client.Dimensions())
	assert.NotNil(t, client.limiter)
}

func TestNewClientFromEnv_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClientFromEnv()

	assert.Nil(t, client)
	assert.Equal(t, ErrNoAPIKey, err)
}

func TestNewClientFromEnv_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	client, err := NewClientFromEnv()

	assert.NotNil(t, client)
	assert.NoError(t, err)
}
