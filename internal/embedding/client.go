package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

// Provider turns text into a vector. Implementations may fail or
// rate-limit; callers must degrade to the remaining retrieval strategies.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		baseURL: os.Getenv("EMBEDDING_URL"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.baseURL == "" {
		return nil, errors.New("missing EMBEDDING_URL")
	}
	if text == "" {
		return nil, errors.New("empty text")
	}

	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/embed",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding provider returned %d: %s", resp.StatusCode, raw)
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("bad embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, errors.New("embedding provider returned empty vector")
	}

	return parsed.Embedding, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
