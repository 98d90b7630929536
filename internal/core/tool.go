package core

import "context"

// Tool is a pluggable capability the agent can invoke.
type Tool interface {
	Name() string
	Initialize(ctx context.Context) error
	Execute(ctx context.Context, command string, args []string) (string, error)
	Cleanup(ctx context.Context) error
	IsAvailable() bool
}

// ContextLooper is implemented by tools that feed events continuously.
// RunContextLoop blocks until ctx is cancelled.
type ContextLooper interface {
	RunContextLoop(ctx context.Context, emit func(Event)) error
}

// ToolDescriptor is the registry view of a tool.
type ToolDescriptor struct {
	Name       string
	Capability string
	Enabled    bool
	Default    bool
	Available  bool
}
