package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TEIScorer calls a cross-encoder served by text-embeddings-inference (or
// anything speaking its /rerank route).
type TEIScorer struct {
	baseURL string
	model   string
	client  *http.Client
}

type teiRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Model     string   `json:"model,omitempty"`
}

type teiScore struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

func NewTEIScorer(baseURL, model string, client *http.Client) *TEIScorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &TEIScorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
	}
}

func (s *TEIScorer) Score(ctx context.Context, query string, texts []string) ([]float32, error) {
	body, err := json.Marshal(teiRequest{Query: query, Texts: texts, Model: s.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var ranked []teiScore
	if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}

	// the service sorts by score, put them back in input order
	scores := make([]float32, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("rerank index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("no score for candidate %d", i)
		}
	}
	return scores, nil
}
