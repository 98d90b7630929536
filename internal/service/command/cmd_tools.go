package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/annabot/internal/core"
)

type ToolsCommand struct {
	tools     toolRunner
	submit    func(core.Event) bool
	formatter *ResponseFormatter
}

func NewToolsCommand(tools toolRunner, submit func(core.Event) bool) *ToolsCommand {
	return &ToolsCommand{tools: tools, submit: submit, formatter: NewResponseFormatter()}
}

func (c *ToolsCommand) Name() string {
	return "tools"
}

func (c *ToolsCommand) Description() string {
	return "List, toggle or run tools"
}

func (c *ToolsCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return c.list(), nil
	}

	switch args[0] {
	case "enable", "disable":
		if len(args) != 2 {
			break
		}
		if err := c.tools.SetEnabled(ctx, args[1], args[0] == "enable"); err != nil {
			return "", err
		}
		return c.formatter.Success(fmt.Sprintf("Tool %s %sd", args[1], args[0])), nil
	case "run":
		if len(args) < 2 {
			break
		}
		var command string
		if len(args) > 2 {
			command = args[2]
		}
		var rest []string
		if len(args) > 3 {
			rest = args[3:]
		}
		return c.run(ctx, args[1], command, rest)
	}

	return c.formatter.Combine(
		c.formatter.Usage("/tools [enable <name> | disable <name> | run <name> [command] [args...]]"),
		c.formatter.Examples([]string{
			"/tools run clock date",
			"/tools run fetch get https://example.com",
			"/tools run weather forecast city=Berlin",
		}),
	), nil
}

func (c *ToolsCommand) run(ctx context.Context, name, command string, args []string) (string, error) {
	out, err := c.tools.Execute(ctx, name, command, args)
	if err != nil {
		return "", err
	}
	if c.submit != nil && out != "" {
		c.submit(core.NewEvent(core.SourceToolResult, out))
	}
	return out, nil
}

func (c *ToolsCommand) list() string {
	descs := c.tools.Descriptors()
	if len(descs) == 0 {
		return c.formatter.Combine(c.formatter.Info("Tools"), "No tools registered.\n")
	}

	items := make([]string, len(descs))
	for i, d := range descs {
		state := "on"
		if !d.Enabled {
			state = "off"
		}
		if !d.Available {
			state += ", unavailable"
		}
		items[i] = fmt.Sprintf("**%s** (%s) %s", d.Name, state, d.Capability)
	}
	return c.formatter.Combine(c.formatter.Info("Tools"), c.formatter.List(items))
}
