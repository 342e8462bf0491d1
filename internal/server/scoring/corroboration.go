package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/geo"
)

// Corroboration policy defaults.
const (
	DefaultSimilarityThreshold = 0.7
	DefaultCountDivisor        = 10.0
)

// Embedder turns texts into vectors of equal length, one per input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Candidate is a read-only projection of another report.
type Candidate struct {
	ReportID string
	Text     string
	Lat      float64
	Lon      float64
}

func (c Candidate) point() geo.Point { return geo.Point{Lat: c.Lat, Lon: c.Lon} }

// CorroborationPolicy tunes the scorer. Non-positive RadiusKm and Divisor
// and a nil Threshold take the defaults. Threshold may be zero or negative.
type CorroborationPolicy struct {
	RadiusKm  float64
	Threshold *float64
	Divisor   float64
}

func (p CorroborationPolicy) withDefaults() CorroborationPolicy {
	if p.RadiusKm <= 0 {
		p.RadiusKm = geo.DefaultRadiusKm
	}
	if p.Threshold == nil {
		t := DefaultSimilarityThreshold
		p.Threshold = &t
	} else {
		t := *p.Threshold
		p.Threshold = &t
	}
	if p.Divisor <= 0 {
		p.Divisor = DefaultCountDivisor
	}
	return p
}

// Corroborator measures how many nearby reports tell the same story.
type Corroborator struct {
	embedder Embedder
	policy   CorroborationPolicy
}

func NewCorroborator(e Embedder, p CorroborationPolicy) *Corroborator {
	return &Corroborator{embedder: e, policy: p.withDefaults()}
}

// Policy returns the effective policy, defaults applied.
func (c *Corroborator) Policy() CorroborationPolicy { return c.policy }

// Strength returns min(1, n/divisor) where n counts candidates within the
// radius whose text embedding has cosine similarity above the threshold to
// text. Empty text, an empty pool or no nearby candidates score exactly 0
// without calling the embedder.
func (c *Corroborator) Strength(ctx context.Context, text string, lat, lon float64, pool []Candidate) (float64, error) {
	if text == "" || len(pool) == 0 {
		return 0, nil
	}

	nearby := geo.WithinRadius(geo.Point{Lat: lat, Lon: lon}, pool, c.policy.RadiusKm, Candidate.point)
	if len(nearby) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(nearby)+1)
	texts = append(texts, text)
	for _, n := range nearby {
		texts = append(texts, n.Text)
	}

	vecs, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding corroboration texts: %w", err)
	}
	if len(vecs) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	similar := 0
	for _, v := range vecs[1:] {
		sim, err := Cosine(vecs[0], v)
		if err != nil {
			return 0, err
		}
		if sim > *c.policy.Threshold {
			similar++
		}
	}

	return math.Min(1, float64(similar)/c.policy.Divisor), nil
}

// Cosine returns the cosine similarity of a and b. A zero vector has
// similarity 0 with everything.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d != %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
