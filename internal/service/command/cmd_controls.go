package command

import (
	"context"
	"fmt"
)

type ControlsCommand struct {
	controls  controls
	formatter *ResponseFormatter
}

func NewControlsCommand(controls controls) *ControlsCommand {
	return &ControlsCommand{controls: controls, formatter: NewResponseFormatter()}
}

func (c *ControlsCommand) Name() string {
	return "controls"
}

func (c *ControlsCommand) Description() string {
	return "Show or change runtime controls"
}

func (c *ControlsCommand) Execute(_ context.Context, args []string) (string, error) {
	switch {
	case len(args) == 0:
		return c.list(), nil
	case args[0] == "set" && len(args) == 3:
		if err := c.controls.Set(args[1], args[2]); err != nil {
			return "", err
		}
		return c.formatter.Success(fmt.Sprintf("%s set to `%s`", args[1], c.controls.Values()[args[1]])), nil
	}
	return c.formatter.Combine(
		c.formatter.Usage("/controls [set <name> <value>]"),
		c.formatter.Examples([]string{
			"/controls set chat_engagement off",
			"/controls set min_response_interval 20s",
		}),
	), nil
}

func (c *ControlsCommand) list() string {
	values := c.controls.Values()
	sections := []string{c.formatter.Info("Controls")}
	for _, name := range c.controls.Names() {
		sections = append(sections, c.formatter.Label(name, values[name]))
	}
	return c.formatter.Combine(sections...)
}
