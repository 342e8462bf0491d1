package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, G: 80, B: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	out, err := DecodeImage(tinyPNG(t))
	require.NoError(t, err)
	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, common.ErrImageDecode)
}

func TestSoftmax(t *testing.T) {
	p := Softmax([]float64{0.2, 0.3, 0.1}, 10)
	require.Len(t, p, 3)
	assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-12)
	assert.Equal(t, 1, Argmax(p))
	// exp(1) / (exp(1) + exp(2) + exp(0))
	assert.InDelta(t, 0.244728, p[0], 1e-6)

	assert.Nil(t, Softmax(nil, 10))
}

func TestArgmax_FirstWins(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}))
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.2, 0.7}))
}

func TestCLIPImageClassifier(t *testing.T) {
	var labelCalls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathEmbedImage:
			var req embedImageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.NotEmpty(t, req.Image)
			_ = json.NewEncoder(w).Encode(embedImageResponse{Embedding: []float64{0, 1}})
		case pathEmbedCLIP:
			labelCalls.Add(1)
			_ = json.NewEncoder(w).Encode(embedTextsResponse{Embeddings: [][]float64{{1, 0}, {0, 1}}})
		default:
			http.NotFound(w, r)
		}
	}), 0)

	clf := NewCLIPImageClassifier(c, []string{"Flooding", "Tsunami"})

	for i := 0; i < 2; i++ {
		label, conf, err := clf.ClassifyImage(context.Background(), tinyPNG(t))
		require.NoError(t, err)
		assert.Equal(t, "Tsunami", label)
		// softmax([0, 10]) picks the second with 1/(1+e^-10).
		assert.InDelta(t, 0.9999546, conf, 1e-6)
	}
	assert.Equal(t, int32(1), labelCalls.Load())
}

func TestCLIPImageClassifier_DecodeFailureSkipsModel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("model server must not be called")
	}), 0)

	label, conf, err := NewCLIPImageClassifier(c, nil).ClassifyImage(context.Background(), []byte{0x00, 0x01})
	assert.ErrorIs(t, err, common.ErrImageDecode)
	assert.Empty(t, label)
	assert.Zero(t, conf)
}
