package signals

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"sync"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

// sharpening is the logit scale applied to cosine similarities before softmax.
const sharpening = 10.0

// CLIPImageClassifier compares an image embedding with the text embeddings
// of each hazard label. Label embeddings are fetched once and reused.
type CLIPImageClassifier struct {
	client *ModelClient
	labels []string

	mu         sync.Mutex
	labelEmbed [][]float64
}

func NewCLIPImageClassifier(client *ModelClient, labels []string) *CLIPImageClassifier {
	if len(labels) == 0 {
		labels = DefaultHazardLabels
	}
	return &CLIPImageClassifier{client: client, labels: labels}
}

func (c *CLIPImageClassifier) ClassifyImage(ctx context.Context, raw []byte) (string, float64, error) {
	normalized, err := DecodeImage(raw)
	if err != nil {
		return "", 0, err
	}

	imgVec, err := c.client.EmbedImage(ctx, normalized)
	if err != nil {
		return "", 0, fmt.Errorf("classify image: %w", err)
	}
	labelVecs, err := c.labelEmbeddings(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("classify image: %w", err)
	}

	sims := make([]float64, len(labelVecs))
	for i, lv := range labelVecs {
		sims[i] = unitCosine(imgVec, lv)
	}
	probs := Softmax(sims, sharpening)
	best := Argmax(probs)
	return c.labels[best], probs[best], nil
}

func (c *CLIPImageClassifier) labelEmbeddings(ctx context.Context) ([][]float64, error) {
	c.mu.Lock()
	cached := c.labelEmbed
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	vecs, err := c.client.EmbedCLIPText(ctx, c.labels)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.labelEmbed = vecs
	c.mu.Unlock()
	return vecs, nil
}

// DecodeImage validates a JPEG, PNG or GIF payload and re-encodes it as PNG.
func DecodeImage(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageDecode, err)
	}
	return buf.Bytes(), nil
}

// Softmax returns softmax(v * scale).
func Softmax(v []float64, scale float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	maxV := math.Inf(-1)
	for _, x := range v {
		maxV = math.Max(maxV, x*scale)
	}
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = math.Exp(x*scale - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the first maximum.
func Argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// unitCosine normalizes both vectors before the dot product; mismatched
// lengths compare over the shared prefix.
func unitCosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
