package signals

import (
	"context"
	"fmt"
)

// SentenceEmbedder embeds texts with the model server's sentence encoder.
type SentenceEmbedder struct {
	client *ModelClient
}

func NewSentenceEmbedder(client *ModelClient) *SentenceEmbedder {
	return &SentenceEmbedder{client: client}
}

func (e *SentenceEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.client.EmbedText(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	return vecs, nil
}
