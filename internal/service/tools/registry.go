// Package tools owns the agent's tool set and the goroutines that feed it.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrToolDisabled    = errors.New("tool disabled")
	ErrToolUnavailable = errors.New("tool unavailable")
)

type toggles interface {
	ToolEnabled(name string) bool
	SetToolEnabled(name string, enabled bool)
}

// Entry describes a tool at registration time.
type Entry struct {
	Tool       core.Tool
	Capability string
	// Default is the enablement a tool starts with.
	Default bool
}

type Registry struct {
	toggles toggles
	entries map[string]Entry
	names   []string
	toggled func(ctx context.Context, name string, enabled bool)
}

// NewRegistry builds the tool table once. Tools whose Default is false start disabled.
func NewRegistry(toggles toggles, entries ...Entry) (*Registry, error) {
	r := &Registry{
		toggles: toggles,
		entries: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		name := e.Tool.Name()
		if name == "" {
			return nil, errors.New("tool with empty name")
		}
		if _, dup := r.entries[name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.entries[name] = e
		r.names = append(r.names, name)
		if !e.Default {
			toggles.SetToolEnabled(name, false)
		}
	}
	sort.Strings(r.names)
	return r, nil
}

func (r *Registry) Get(name string) (core.Tool, bool) {
	e, ok := r.entries[name]
	return e.Tool, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Descriptors() []core.ToolDescriptor {
	out := make([]core.ToolDescriptor, 0, len(r.names))
	for _, name := range r.names {
		e := r.entries[name]
		out = append(out, core.ToolDescriptor{
			Name:       name,
			Capability: e.Capability,
			Enabled:    r.toggles.ToolEnabled(name),
			Default:    e.Default,
			Available:  e.Tool.IsAvailable(),
		})
	}
	return out
}

// SetEnabled flips a tool on or off. Enabling a tool that is not available yet
// initializes it; if that fails the tool stays disabled.
func (r *Registry) SetEnabled(ctx context.Context, name string, enabled bool) error {
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if enabled && !e.Tool.IsAvailable() {
		if err := e.Tool.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", name, err)
		}
	}
	r.toggles.SetToolEnabled(name, enabled)
	if r.toggled != nil {
		r.toggled(ctx, name, enabled)
	}
	return nil
}

// onToggle registers fn to run after every successful SetEnabled. Call it
// before the registry is shared.
func (r *Registry) onToggle(fn func(ctx context.Context, name string, enabled bool)) {
	r.toggled = fn
}

// Execute runs command on the named tool.
func (r *Registry) Execute(ctx context.Context, name, command string, args []string) (string, error) {
	e, ok := r.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if !r.toggles.ToolEnabled(name) {
		return "", fmt.Errorf("%w: %s", ErrToolDisabled, name)
	}
	if !e.Tool.IsAvailable() {
		return "", fmt.Errorf("%w: %s", ErrToolUnavailable, name)
	}
	return e.Tool.Execute(ctx, command, args)
}

// Initialize prepares every enabled tool. A tool that fails stays registered but unavailable.
func (r *Registry) Initialize(ctx context.Context) {
	for _, name := range r.names {
		if !r.toggles.ToolEnabled(name) {
			continue
		}
		if err := r.entries[name].Tool.Initialize(ctx); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("tool", name).Msg("tool failed to initialize")
		}
	}
}

func (r *Registry) Cleanup(ctx context.Context) error {
	var errs []error
	for _, name := range r.names {
		if err := r.entries[name].Tool.Cleanup(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Loopers returns the enabled, available tools that run a context loop.
func (r *Registry) Loopers() map[string]core.ContextLooper {
	out := make(map[string]core.ContextLooper)
	for _, name := range r.names {
		if l, ok := r.looper(name); ok {
			out[name] = l
		}
	}
	return out
}

func (r *Registry) looper(name string) (core.ContextLooper, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	l, ok := e.Tool.(core.ContextLooper)
	if !ok || !r.toggles.ToolEnabled(name) || !e.Tool.IsAvailable() {
		return nil, false
	}
	return l, true
}
