package testutil

// EmbeddingDimensions matches the audio_chunks.embeddings column.
const EmbeddingDimensions = 768

// Vector returns a vector of EmbeddingDimensions whose leading components are
// values and the rest zero.
func Vector(values ...float32) []float32 {
	v := make([]float32, EmbeddingDimensions)
	copy(v, values)
	return v
}
