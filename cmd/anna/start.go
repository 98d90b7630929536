package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent and its transports",
	Long:  `Initializes storage, memory, tools and the configured transports (terminal, Telegram), then runs the cognitive loop until interrupted or told to sleep.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting annabot")

		// The kill phrase ends the process the same way a signal does.
		services := NewServices(ctx, stop)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("annabot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
