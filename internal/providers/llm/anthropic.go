package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/annabot/internal/core"
)

const anthropicVersion = "2023-06-01"

type Anthropic struct {
	baseProvider
	maxTokens int
}

func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model),
		maxTokens:    1024,
	}
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (a *Anthropic) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, req)
	defer cancel()

	payload := map[string]any{
		"model":      a.modelFor(req),
		"max_tokens": a.maxTokens,
		"messages":   []chatMessage{{Role: core.RoleUser, Content: req.Prompt}},
	}
	if req.System != "" {
		payload["system"] = req.System
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := a.doJSON(ctx, http.MethodPost, "/v1/messages", payload, a.headers(), &result); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}

func (a *Anthropic) Models(ctx context.Context) ([]Model, error) {
	var models []Model
	afterID := ""

	for {
		path := "/v1/models?limit=1000"
		if afterID != "" {
			path = fmt.Sprintf("%s&after_id=%s", path, url.QueryEscape(afterID))
		}

		var result struct {
			Data []struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
				Type        string `json:"type"`
			} `json:"data"`
			HasMore bool   `json:"has_more"`
			LastID  string `json:"last_id"`
		}
		if err := a.doJSON(ctx, http.MethodGet, path, nil, a.headers(), &result); err != nil {
			return nil, err
		}

		for _, m := range result.Data {
			if m.Type == "model" {
				models = append(models, Model{ID: m.ID, Name: m.DisplayName})
			}
		}

		if !result.HasMore {
			break
		}
		afterID = result.LastID
	}

	return models, nil
}
