package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/clock"
)

var (
	_ core.Tool          = (*Clock)(nil)
	_ core.ContextLooper = (*Clock)(nil)
)

// Clock emits a timer event every interval and answers time queries.
type Clock struct {
	interval time.Duration
	clock    clock.Clock
}

func NewClock(interval time.Duration, clk clock.Clock) *Clock {
	if clk == nil {
		clk = clock.Real()
	}
	return &Clock{interval: interval, clock: clk}
}

func (c *Clock) Name() string { return "clock" }

func (c *Clock) Initialize(ctx context.Context) error {
	if c.interval <= 0 {
		return fmt.Errorf("clock interval must be positive, got %s", c.interval)
	}
	return nil
}

func (c *Clock) Execute(ctx context.Context, command string, args []string) (string, error) {
	now := c.clock.Now()
	switch command {
	case "", "now", "time":
		return now.Format("15:04"), nil
	case "date":
		return now.Format("Monday, January 2, 2006"), nil
	}
	return "", fmt.Errorf("clock: unknown command %q", command)
}

func (c *Clock) Cleanup(ctx context.Context) error { return nil }

func (c *Clock) IsAvailable() bool { return c.interval > 0 }

func (c *Clock) RunContextLoop(ctx context.Context, emit func(core.Event)) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := c.clock.Now()
			ev := core.NewEvent(core.SourceTimer, "It is "+now.Format("15:04")+".")
			ev.Timestamp = now
			emit(ev)
		}
	}
}
