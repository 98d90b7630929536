package llm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/core"
)

// DynamicProvider lets the model change at runtime without restarting the loop.
type DynamicProvider struct {
	config  *config.LLMConfig
	current atomic.Value
	mu      sync.Mutex
}

func NewDynamicProvider(ctx context.Context, cfg *config.LLMConfig) (*DynamicProvider, error) {
	d := &DynamicProvider{config: cfg}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}

	d.current.Store(provider)
	return d, nil
}

func (d *DynamicProvider) provider() Provider {
	return d.current.Load().(Provider)
}

func (d *DynamicProvider) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	return d.provider().Complete(ctx, req)
}

func (d *DynamicProvider) Models(ctx context.Context) ([]Model, error) {
	return d.provider().Models(ctx)
}

func (d *DynamicProvider) GetModel() string {
	return d.config.GetModel()
}

func (d *DynamicProvider) SetModel(ctx context.Context, model string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.config.GetModel()
	if err := d.config.SetModel(model); err != nil {
		return err
	}

	newProvider, err := NewProvider(ctx, d.config)
	if err != nil {
		_ = d.config.SetModel(prev)
		return fmt.Errorf("failed to create provider: %w", err)
	}

	// Atomic swap
	d.current.Store(newProvider)
	return nil
}
