package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sandevgo/annabot/internal/core"
)

// Ollama uses the native generate endpoint, which takes a system prompt and a
// single prompt string without chat framing.
type Ollama struct {
	baseProvider
}

func NewOllama(baseURL, apiKey, model string) *Ollama {
	return &Ollama{baseProvider: newBaseProvider(baseURL, apiKey, model)}
}

func (o *Ollama) headers() map[string]string {
	if o.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + o.apiKey}
}

func (o *Ollama) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, req)
	defer cancel()

	payload := map[string]any{
		"model":  o.modelFor(req),
		"prompt": req.Prompt,
		"stream": false,
	}
	if req.System != "" {
		payload["system"] = req.System
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := o.doJSON(ctx, http.MethodPost, "/api/generate", payload, o.headers(), &result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama: %s", result.Error)
	}
	return result.Response, nil
}

func (o *Ollama) Models(ctx context.Context) ([]Model, error) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := o.doJSON(ctx, http.MethodGet, "/api/tags", nil, o.headers(), &result); err != nil {
		return nil, fmt.Errorf("ollama not available: %w", err)
	}

	models := make([]Model, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, Model{ID: m.Name, Name: m.Name})
	}
	return models, nil
}
