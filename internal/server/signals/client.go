package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
)

const (
	pathClassifyText = "/v1/classify/text"
	pathEmbedImage   = "/v1/embed/image"
	pathEmbedCLIP    = "/v1/embed/clip-text"
	pathEmbedText    = "/v1/embed/text"
)

// ClientOptions tune a ModelClient. Zero values fall back to defaults.
type ClientOptions struct {
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	HTTPClient      *http.Client
}

// ModelClient talks JSON to the model server. Transport errors and 5xx
// responses are retried with exponential backoff; 4xx responses are not.
type ModelClient struct {
	baseURL         string
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
}

func NewModelClient(baseURL string, opts ClientOptions) *ModelClient {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	interval := opts.InitialInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &ModelClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      hc,
		maxRetries:      opts.MaxRetries,
		initialInterval: interval,
	}
}

type classifyTextRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type classifyTextResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type embedImageRequest struct {
	Image []byte `json:"image"`
}

type embedImageResponse struct {
	Embedding []float64 `json:"embedding"`
}

type embedTextsRequest struct {
	Texts []string `json:"texts"`
}

type embedTextsResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// ZeroShot scores text against labels. The returned slices are parallel.
func (c *ModelClient) ZeroShot(ctx context.Context, text string, labels []string) ([]string, []float64, error) {
	var resp classifyTextResponse
	if err := c.post(ctx, pathClassifyText, classifyTextRequest{Text: text, Labels: labels}, &resp); err != nil {
		return nil, nil, err
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, nil, fmt.Errorf("classify text: %d labels but %d scores", len(resp.Labels), len(resp.Scores))
	}
	return resp.Labels, resp.Scores, nil
}

// EmbedImage returns the image-tower embedding of a PNG image.
func (c *ModelClient) EmbedImage(ctx context.Context, png []byte) ([]float64, error) {
	var resp embedImageResponse
	if err := c.post(ctx, pathEmbedImage, embedImageRequest{Image: png}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("embed image: empty embedding")
	}
	return resp.Embedding, nil
}

// EmbedCLIPText returns text-tower embeddings in the image embedding space.
func (c *ModelClient) EmbedCLIPText(ctx context.Context, texts []string) ([][]float64, error) {
	return c.embedTexts(ctx, pathEmbedCLIP, texts)
}

// EmbedText returns sentence embeddings used for similarity.
func (c *ModelClient) EmbedText(ctx context.Context, texts []string) ([][]float64, error) {
	return c.embedTexts(ctx, pathEmbedText, texts)
}

func (c *ModelClient) embedTexts(ctx context.Context, path string, texts []string) ([][]float64, error) {
	var resp embedTextsResponse
	if err := c.post(ctx, path, embedTextsRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%s: %d embeddings for %d texts", path, len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (c *ModelClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(payload))
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(payload)))
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s response: %w", path, err))
		}
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCollaboratorUnavailable, err)
	}
	return nil
}
