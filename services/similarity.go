package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// SimilarityResult is the oracle's verdict on how far the proposed content
// drifts from the approved version. Advisory only.
type SimilarityResult struct {
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
	Detail         string  `json:"summary"`
}

// Summary renders the human-readable diff prefill.
func (r *SimilarityResult) Summary() string {
	if r.Detail != "" {
		return r.Detail
	}
	return fmt.Sprintf("%s change (similarity %.2f)", r.Classification, r.Score)
}

// SimilarityOracle compares two content blobs. Implementations must never be
// consulted on a transition's critical path.
type SimilarityOracle interface {
	Compare(ctx context.Context, oldContent, newContent string) (*SimilarityResult, error)
}

type httpSimilarityOracle struct {
	baseURL string
	client  *http.Client
}

// NewSimilarityOracle builds the HTTP client for the external similarity
// service, or returns nil when SIMILARITY_API_URL is not configured.
func NewSimilarityOracle() SimilarityOracle {
	baseURL := os.Getenv("SIMILARITY_API_URL")
	if baseURL == "" {
		return nil
	}
	return &httpSimilarityOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (o *httpSimilarityOracle) Compare(ctx context.Context, oldContent, newContent string) (*SimilarityResult, error) {
	payload, err := json.Marshal(map[string]string{
		"old_text": oldContent,
		"new_text": newContent,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/compare", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("similarity service returned status %d", resp.StatusCode)
	}

	var result SimilarityResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
