// Package embed turns text into vectors through an embedding server.
package embed

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

	"github.com/sandevgo/annabot/internal/core"
)

var ErrEmptyEmbedding = errors.New("embedding server returned no vector")

var _ core.Embedder = (*Ollama)(nil)

// Ollama calls the /api/embed endpoint. Inputs longer than the model context
// are truncated by the server.
type Ollama struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOllama(baseURL, apiKey, model string) *Ollama {
	return &Ollama{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (o *Ollama) Model() string {
	return o.model
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(map[string]any{
		"model":    o.model,
		"input":    text,
		"truncate": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return result.Embeddings[0], nil
}

// PullProgress is one status line of a model pull.
type PullProgress struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Pull asks the server to download the model, reporting each progress line.
// It returns once the server reports success.
func (o *Ollama) Pull(ctx context.Context, onProgress func(PullProgress)) error {
	data, err := json.Marshal(map[string]any{"model": o.model, "stream": true})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/pull", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	// Pulls outlive the embed timeout; ctx bounds them instead.
	resp, err := (&http.Client{Transport: o.client.Transport}).Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(resp.Body)
	for {
		var p PullProgress
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("pull ended without success")
			}
			return fmt.Errorf("decode: %w", err)
		}
		if p.Error != "" {
			return errors.New(p.Error)
		}
		if onProgress != nil {
			onProgress(p)
		}
		if p.Status == "success" {
			return nil
		}
	}
}
