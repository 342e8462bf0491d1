package signals

import (
	"context"
	"fmt"
)

// ZeroShotTextClassifier picks the highest scoring hazard label.
type ZeroShotTextClassifier struct {
	client *ModelClient
	labels []string
}

func NewZeroShotTextClassifier(client *ModelClient, labels []string) *ZeroShotTextClassifier {
	if len(labels) == 0 {
		labels = DefaultHazardLabels
	}
	return &ZeroShotTextClassifier{client: client, labels: labels}
}

func (c *ZeroShotTextClassifier) ClassifyText(ctx context.Context, text string) (string, float64, error) {
	if text == "" {
		return "", 0, nil
	}

	labels, scores, err := c.client.ZeroShot(ctx, text, c.labels)
	if err != nil {
		return "", 0, fmt.Errorf("classify text: %w", err)
	}
	if len(labels) == 0 {
		return "", 0, fmt.Errorf("classify text: no labels returned")
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return labels[best], scores[best], nil
}
