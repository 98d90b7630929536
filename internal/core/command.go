package core

import "context"

// CmdRouter dispatches "/name args" lines typed into an input adapter.
type CmdRouter interface {
	Execute(ctx context.Context, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args []string) (string, error)
}
