package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"unifold/internal/engine"
	"unifold/internal/logging"
)

var cfg engine.Config

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run the unifold engine",
	Long: "Run the unifold engine: the transformer gRPC server, the preset pipeline\n" +
		"(Kafka source, processor, sinks) and the Prometheus /metrics endpoint.",
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logging.InitFromEnv()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := engine.Bootstrap(ctx, cfg)
		if err != nil {
			return err
		}
		return e.Run(ctx)
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&cfg.GRPCPort, "grpc-port", 7070, "transformer gRPC port")
	f.IntVar(&cfg.MetricsPort, "metrics-port", 9100, "Prometheus /metrics port (0 disables)")
	rootCmd.PersistentFlags().StringVar(&cfg.PresetYml, "preset", "", "preset file (plugins, settings, source, sinks)")
	rootCmd.AddCommand(processCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.L().Error("engine", "err", err)
		os.Exit(1)
	}
}
