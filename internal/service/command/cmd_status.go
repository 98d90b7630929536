package command

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type StatusCommand struct {
	status    statusSource
	formatter *ResponseFormatter
}

func NewStatusCommand(status statusSource) *StatusCommand {
	return &StatusCommand{status: status, formatter: NewResponseFormatter()}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show buffer, chat and decision state"
}

func (c *StatusCommand) Execute(_ context.Context, _ []string) (string, error) {
	s := c.status.Status()

	decision := "silent"
	if s.LastDecision.Reason != "" {
		decision = string(s.LastDecision.Reason)
	}

	return c.formatter.Combine(
		c.formatter.Info("Status"),
		c.formatter.Label("Model", s.Model),
		c.formatter.Label("Thoughts", fmt.Sprintf("%d/%d", s.Thoughts, s.Capacity)),
		c.formatter.Label("Last decision", decision),
		c.formatter.Label("Last spoke", ago(s.LastSpoke)),
		c.formatter.Label("Last user input", ago(s.LastUser)),
		c.formatter.Label("Chat unengaged", strconv.Itoa(s.Chat.Unengaged)),
		c.formatter.Label("Generating", strconv.FormatBool(s.Generating)),
	), nil
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}
