package command

import (
	"context"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/service/agent"
)

type controls interface {
	Model() string
	ChangeModel(ctx context.Context, model string) error
	Names() []string
	Values() map[string]string
	Set(name, value string) error
}

type toolRunner interface {
	Descriptors() []core.ToolDescriptor
	SetEnabled(ctx context.Context, name string, enabled bool) error
	Execute(ctx context.Context, name, command string, args []string) (string, error)
}

type statusSource interface {
	Status() agent.Status
}

// ModelLister returns the model ids the active provider serves.
type ModelLister func(ctx context.Context) ([]string, error)

type Deps struct {
	Controls controls
	Tools    toolRunner
	Status   statusSource
	Models   ModelLister
	// Submit feeds tool output back into the agent as an event.
	Submit func(core.Event) bool
}

func NewCommands(d Deps) []core.Command {
	return []core.Command{
		NewModelCommand(d.Controls, d.Models),
		NewControlsCommand(d.Controls),
		NewToolsCommand(d.Tools, d.Submit),
		NewStatusCommand(d.Status),
	}
}
