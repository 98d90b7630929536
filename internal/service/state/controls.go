package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const DefaultKillPhrase = "shut down sleep now"

var ErrUnknownControl = errors.New("unknown control")

type modelSwitcher interface {
	GetModel() string
	SetModel(ctx context.Context, model string) error
}

// Options seeds Controls at startup.
type Options struct {
	ChatEngagement      bool
	ContentFilter       bool
	MemorySearch        bool
	LimitProcessing     bool
	MinResponseInterval time.Duration
	Paused              bool
	KillPhrase          string
	DisabledTools       []string
}

// Controls holds the runtime toggles of one agent session.
type Controls struct {
	mu       sync.RWMutex
	opts     Options
	disabled map[string]bool
	models   modelSwitcher
}

func NewControls(opts Options, models modelSwitcher) *Controls {
	if opts.KillPhrase == "" {
		opts.KillPhrase = DefaultKillPhrase
	}
	c := &Controls{
		opts:     opts,
		disabled: make(map[string]bool, len(opts.DisabledTools)),
		models:   models,
	}
	for _, name := range opts.DisabledTools {
		c.disabled[strings.TrimSpace(name)] = true
	}
	return c
}

func (c *Controls) ChatEngagement() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.ChatEngagement
}

func (c *Controls) ContentFilter() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.ContentFilter
}

func (c *Controls) MemorySearch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.MemorySearch
}

func (c *Controls) LimitProcessing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.LimitProcessing
}

func (c *Controls) MinResponseInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.MinResponseInterval
}

func (c *Controls) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.Paused
}

func (c *Controls) SetPaused(paused bool) {
	c.mu.Lock()
	c.opts.Paused = paused
	c.mu.Unlock()
}

func (c *Controls) KillPhrase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts.KillPhrase
}

// IsKillPhrase reports whether text contains the kill phrase, ignoring case.
func (c *Controls) IsKillPhrase(text string) bool {
	phrase := strings.ToLower(c.KillPhrase())
	return phrase != "" && strings.Contains(strings.ToLower(text), phrase)
}

func (c *Controls) ToolEnabled(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled[name]
}

func (c *Controls) SetToolEnabled(name string, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enabled {
		delete(c.disabled, name)
		return
	}
	c.disabled[name] = true
}

// Model returns the active completion model, or "" when no switcher is wired.
func (c *Controls) Model() string {
	if c.models == nil {
		return ""
	}
	return c.models.GetModel()
}

func (c *Controls) ChangeModel(ctx context.Context, model string) error {
	if c.models == nil {
		return errors.New("model switching is not available")
	}
	return c.models.SetModel(ctx, model)
}

// Values lists the boolean and duration toggles by name.
func (c *Controls) Values() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]string{
		"chat_engagement":       strconv.FormatBool(c.opts.ChatEngagement),
		"content_filter":        strconv.FormatBool(c.opts.ContentFilter),
		"memory_search":         strconv.FormatBool(c.opts.MemorySearch),
		"limit_processing":      strconv.FormatBool(c.opts.LimitProcessing),
		"min_response_interval": c.opts.MinResponseInterval.String(),
		"paused":                strconv.FormatBool(c.opts.Paused),
	}
}

// Names returns the settable control names in sorted order.
func (c *Controls) Names() []string {
	vals := c.Values()
	names := make([]string, 0, len(vals))
	for k := range vals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Set parses value and assigns it to the named control.
func (c *Controls) Set(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "min_response_interval" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		c.opts.MinResponseInterval = d
		return nil
	}

	var target *bool
	switch name {
	case "chat_engagement":
		target = &c.opts.ChatEngagement
	case "content_filter":
		target = &c.opts.ContentFilter
	case "memory_search":
		target = &c.opts.MemorySearch
	case "limit_processing":
		target = &c.opts.LimitProcessing
	case "paused":
		target = &c.opts.Paused
	default:
		return fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}

	b, err := parseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*target = b
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "enable", "enabled":
		return true, nil
	case "off", "no", "disable", "disabled":
		return false, nil
	}
	return strconv.ParseBool(s)
}
