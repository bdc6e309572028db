package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_NoContext(t *testing.T) {
	prompt := BuildPrompt("", "What is the capital of Brazil?", nil)

	assert.True(t, strings.HasPrefix(prompt, "You are an educational assistant. Answer"))
	assert.Contains(t, prompt, "clearly and precisely in Brazilian Portuguese")
	assert.Contains(t, prompt, "STUDENT QUESTION:\nWhat is the capital of Brazil?")
	assert.Contains(t, prompt, "ask for clarification")
	assert.NotContains(t, prompt, "CLASS CONTEXT:")
}

func TestBuildPrompt_WithContext(t *testing.T) {
	prompt := BuildPrompt("Brazilian Portuguese", "O que foi discutido?", []string{"A aula cobriu fotossíntese", "Fase clara"})

	assert.Contains(t, prompt, "CLASS CONTEXT:\nA aula cobriu fotossíntese\n\nFase clara")
	assert.Contains(t, prompt, "STUDENT QUESTION:\nO que foi discutido?")
	assert.Contains(t, prompt, "EXCLUSIVELY")
	assert.Contains(t, prompt, InsufficientInformationReply)
	assert.Contains(t, prompt, "ANSWER:")
	assert.Contains(t, prompt, "RELEVANT EXCERPTS:")
	assert.Contains(t, prompt, "ADDITIONAL NOTES:")
	assert.NotContains(t, prompt, StopSequence)
}

func TestUsesContextTemplate(t *testing.T) {
	assert.False(t, UsesContextTemplate(nil))
	assert.False(t, UsesContextTemplate([]string{}))
	assert.False(t, UsesContextTemplate([]string{"", "  "}))
	assert.True(t, UsesContextTemplate([]string{"", "texto"}))
}
