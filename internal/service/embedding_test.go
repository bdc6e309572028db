package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingService_Embed_Success(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	service := NewEmbeddingService(mockClient, 3)

	ctx := context.Background()
	embedding := []float32{0.1, 0.2, 0.3}
	mockClient.On("GenerateEmbedding", ctx, "A aula cobriu fotossíntese", domain.EmbeddingTaskRetrievalDocument).Return(embedding, nil)

	vec, err := service.Embed(ctx, "A aula cobriu fotossíntese", domain.EmbeddingTaskRetrievalDocument)

	require.NoError(t, err)
	assert.Equal(t, embedding, vec)
	assert.Equal(t, 3, service.Dimensions())
	mockClient.AssertExpectations(t)
}

func TestEmbeddingService_Embed_InvalidTaskDefaultsToDocument(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	service := NewEmbeddingService(mockClient, 2)

	ctx := context.Background()
	mockClient.On("GenerateEmbedding", ctx, "text", domain.EmbeddingTaskRetrievalDocument).Return([]float32{1, 0}, nil)

	_, err := service.Embed(ctx, "text", domain.EmbeddingTask("CLUSTERING"))

	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestEmbeddingService_Embed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		result []float32
		err    error
	}{
		{name: "client error", text: "text", err: errors.New("quota exceeded")},
		{name: "no vector", text: "text", result: []float32{}},
		{name: "wrong dimensions", text: "text", result: []float32{0.1, 0.2}},
		{name: "empty text", text: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockEmbeddingClient)
			service := NewEmbeddingService(mockClient, 3)
			ctx := context.Background()

			if tt.result != nil || tt.err != nil {
				mockClient.On("GenerateEmbedding", ctx, tt.text, domain.EmbeddingTaskRetrievalQuery).Return(tt.result, tt.err)
			}

			vec, err := service.Embed(ctx, tt.text, domain.EmbeddingTaskRetrievalQuery)

			assert.Nil(t, vec)
			assert.ErrorIs(t, err, domain.ErrEmbedding)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
