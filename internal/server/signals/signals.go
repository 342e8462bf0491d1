// Package signals defines the evidence collaborators of the veracity engine
// and their adapters against an HTTP model server.
//
// The engine only ever sees the three small interfaces below. The concrete
// models (zero-shot text classifier, CLIP image/text encoder, sentence
// embedder) live behind the model server.
package signals

import "context"

// DefaultHazardLabels is the closed label set used when none is configured.
var DefaultHazardLabels = []string{
	"Flooding",
	"Tsunami",
	"High Waves",
	"Storm Surge",
	"Coastal Erosion",
	"Other",
}

// TextClassifier returns the best hazard label for text and its confidence.
// Empty text yields an empty label and zero confidence.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (string, float64, error)
}

// ImageClassifier returns the best hazard label for an encoded image.
// Undecodable input fails with common.ErrImageDecode.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, image []byte) (string, float64, error)
}

// Embedder maps texts to equal-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
