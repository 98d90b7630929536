package main

import (
	"fmt"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/service/ui"
	"github.com/sandevgo/annabot/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetEnvPath()); err != nil {
			return err
		}

		sections := []struct {
			title string
			cfg   any
		}{
			{"APP", config.NewAppConfig(ctx)},
			{"LLM", config.NewLLMConfig(ctx)},
			{"DECISION", config.NewDecisionConfig(ctx)},
			{"CHAT", config.NewChatConfig(ctx)},
			{"CONTROLS", config.NewControlsConfig(ctx)},
			{"MEMORY", config.NewMemoryConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n  %s\n\n", ui.TitleStyle.Render("RUNTIME"), config.GetRuntimePath())
		for _, s := range sections {
			entries, err := env.Entries(s.cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", s.title, err)
			}
			fmt.Fprintln(out, ui.TitleStyle.Render(s.title))
			for _, e := range entries {
				if e.Secret && !showSecrets {
					e = e.Masked()
					e.Value = ui.DescStyle.Render(e.Value)
				}
				fmt.Fprintf(out, "  %s\n", e)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print API keys and tokens in clear")
	rootCmd.AddCommand(configCmd)
}
