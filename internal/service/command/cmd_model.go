package command

import (
	"context"
	"fmt"
	"sort"
)

type ModelCommand struct {
	controls  controls
	list      ModelLister
	formatter *ResponseFormatter
}

func NewModelCommand(controls controls, list ModelLister) *ModelCommand {
	return &ModelCommand{
		controls:  controls,
		list:      list,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show, list or change the current model"
}

func (c *ModelCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Model", c.controls.Model()),
			c.formatter.Usage("/model [list | <model>]"),
			c.formatter.Examples([]string{
				"/model list",
				"/model llama3.1:8b",
				"/model openai/gpt-4o-mini",
			}),
		), nil
	}

	if args[0] == "list" {
		return c.models(ctx)
	}

	if err := c.controls.ChangeModel(ctx, args[0]); err != nil {
		return "", fmt.Errorf("failed to set model: %w", err)
	}
	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s`", c.controls.Model())), nil
}

func (c *ModelCommand) models(ctx context.Context) (string, error) {
	if c.list == nil {
		return "", fmt.Errorf("model listing is not available")
	}
	ids, err := c.list(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(ids) == 0 {
		return c.formatter.Combine(c.formatter.Info("Models"), "No models available.\n"), nil
	}

	sort.Strings(ids)
	current := c.controls.Model()
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = fmt.Sprintf("`%s`", id)
		if id == current {
			items[i] += " (current)"
		}
	}
	return c.formatter.Combine(c.formatter.Info("Models"), c.formatter.List(items)), nil
}
