//go:build e2e

package e2e

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/testutil"
)

// contextMarker appears only in prompts that carry lecture content.
const contextMarker = "CLASS CONTEXT:"

var errGeneralUnavailable = errors.New("general knowledge disabled")

// fakeModel stands in for the hosted model. Audio bytes are treated as their
// own transcript, embeddings are bag-of-words hashes so shared words give a
// positive cosine similarity, and context prompts are echoed back.
type fakeModel struct {
	mu           sync.Mutex
	generalFails bool
	prompts      []string
}

func (f *fakeModel) SetGeneralFails(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generalFails = fail
}

func (f *fakeModel) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeModel) GenerateEmbedding(_ context.Context, text string, _ domain.EmbeddingTask) ([]float32, error) {
	v := make([]float32, testutil.EmbeddingDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, unicode.IsPunct)
		if len([]rune(word)) <= 3 {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%uint32(len(v))]++
	}
	return v, nil
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string, _ domain.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)

	if !strings.Contains(prompt, contextMarker) {
		if f.generalFails {
			return "", errGeneralUnavailable
		}
		return "ANSWER:\nResposta de conhecimento geral.", nil
	}

	start := strings.Index(prompt, contextMarker) + len(contextMarker)
	end := strings.Index(prompt, "STUDENT QUESTION:")
	return "ANSWER:\n" + strings.TrimSpace(prompt[start:end]), nil
}

func (f *fakeModel) Transcribe(_ context.Context, audio []byte, _, _ string) (string, error) {
	return string(audio), nil
}
