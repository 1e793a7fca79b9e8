package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webgl-serve/internal/bridge"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

var (
	agentHub   string
	agentName  string
	agentRetry time.Duration
)

var agentCmd = &cobra.Command{
	Use:   "agent <dir>",
	Short: "Serve a build folder to a server running the bridge source",
	Long: `Connects to the /bridge endpoint of a webglserve server and answers its
file requests from a local build folder. The agent reconnects when the
connection drops.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}

		dir, err := store.OpenDir(args[0])
		if err != nil {
			return err
		}
		defer dir.Close()
		if !dir.HasIndex() {
			logger.Warn("no index.html found in build directory", slog.String("dir", dir.Dir()))
		}

		name := agentName
		if name == "" {
			name, _ = os.Hostname()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := &bridge.Agent{
			Store:  dir,
			Name:   name,
			Secret: cfg.Bridge.Secret,
			Logger: logger,
		}
		return a.Serve(ctx, agentHub, agentRetry)
	},
}

func init() {
	agentCmd.Flags().StringVar(&agentHub, "hub", "ws://127.0.0.1:8080/bridge", "bridge URL of the server")
	agentCmd.Flags().StringVar(&agentName, "name", "", "agent name shown by the server (default: hostname)")
	agentCmd.Flags().DurationVar(&agentRetry, "retry", 2*time.Second, "delay before reconnecting")
	rootCmd.AddCommand(agentCmd)
}
