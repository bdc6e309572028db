package service

import (
	"fmt"
	"strings"
)

// DefaultLanguage is the language answers and transcriptions are written in
// unless configured otherwise.
const DefaultLanguage = "Brazilian Portuguese"

// StopSequence cuts the answer off before an unrequested fourth section.
const StopSequence = "ADDITIONAL OBSERVATIONS:"

// InsufficientInformationReply is the sentence the model is told to use when
// the lecture content does not cover the question.
const InsufficientInformationReply = "Based on the available lecture content, there is insufficient information to answer this question."

const noContextTemplate = `You are an educational assistant. Answer the following question clearly and precisely in %[1]s.
Use your general knowledge to provide a helpful and informative response.

STUDENT QUESTION:
%[2]s

IMPORTANT INSTRUCTIONS:
1. Provide a clear, direct, and helpful answer.
2. Use %[1]s.
3. Keep your response educational and professional.
4. Structure your response clearly.
5. If the question is unclear or too broad, ask for clarification.`

const contextTemplate = `You are an educational assistant specializing in analyzing lesson content and answering questions.
Using the text provided below as context, answer the question clearly and precisely in %[1]s.

CLASS CONTEXT:
%[2]s

STUDENT QUESTION:
%[3]s

IMPORTANT INSTRUCTIONS:
1. Carefully analyze the context and the question.
2. Use EXCLUSIVELY information contained in the context provided.
3. If the information is not explicit in the context, respond: "%[4]s"
4. When citing information from the context, always use the term "lecture content."
5. Structure your response in the following format:

  ANSWER:
  [Your main answer here, objective and direct]

  RELEVANT EXCERPTS:
  [If applicable, cite specific excerpts from the lesson content that support your answer]

  ADDITIONAL NOTES:
  [If necessary, include notes about important limitations or clarifications]

6. Keep your answers:
  - Objective and direct
  - In clear, professional language
  - Well-structured and easy to understand
  - With relevant context quotes when appropriate

7. Avoid:
  - Adding extraneous information to the context
  - Making assumptions beyond the provided content
  - Using complex or unnecessary technical language`

// JoinPassages joins context passages the way they are placed in the prompt.
func JoinPassages(passages []string) string {
	return strings.Join(passages, "\n\n")
}

// BuildPrompt picks the template for the given passages. The general-knowledge
// template is used when there are no passages or they are all blank.
func BuildPrompt(language, question string, passages []string) string {
	if language == "" {
		language = DefaultLanguage
	}

	if !UsesContextTemplate(passages) {
		return fmt.Sprintf(noContextTemplate, language, question)
	}

	return fmt.Sprintf(contextTemplate, language, JoinPassages(passages), question, InsufficientInformationReply)
}

// UsesContextTemplate reports whether BuildPrompt would ground the answer on passages.
func UsesContextTemplate(passages []string) bool {
	return len(passages) > 0 && strings.TrimSpace(JoinPassages(passages)) != ""
}
