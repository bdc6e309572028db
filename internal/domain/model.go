package domain

// EmbeddingTask tells the embedding model how the vector will be used.
type EmbeddingTask string

const (
	EmbeddingTaskRetrievalDocument EmbeddingTask = "RETRIEVAL_DOCUMENT"
	EmbeddingTaskRetrievalQuery    EmbeddingTask = "RETRIEVAL_QUERY"
)

// IsValid reports whether the task is one the embedding clients understand.
func (t EmbeddingTask) IsValid() bool {
	switch t {
	case EmbeddingTaskRetrievalDocument, EmbeddingTaskRetrievalQuery:
		return true
	}
	return false
}

// HarmCategory names a content-safety category.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// HarmThreshold is the severity at which content is blocked.
type HarmThreshold string

const (
	HarmThresholdBlockMediumAndAbove HarmThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

// SafetySetting pairs a category with its blocking threshold.
type SafetySetting struct {
	Category  HarmCategory
	Threshold HarmThreshold
}

// GenerationOptions are the sampling parameters of one text generation call.
type GenerationOptions struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
	StopSequences   []string
	SafetySettings  []SafetySetting
}
