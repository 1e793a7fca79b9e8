package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/webgl-serve/internal/bridge"
	"github.com/ziadkadry99/webgl-serve/internal/config"
	"github.com/ziadkadry99/webgl-serve/internal/router"
	"github.com/ziadkadry99/webgl-serve/internal/server"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

var (
	serveListen string
	serveSource string
	serveDir    string
	serveOpen   bool
	serveWatch  bool
)

// watchDebounce is the quiet period before a rebuilt folder is picked up.
const watchDebounce = 300 * time.Millisecond

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve the game build",
	Long: `Starts the HTTP server. The build is read from the configured source:
uploaded records, a folder on disk, or an agent connected to /bridge.
Passing a folder selects the directory source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Listen = serveListen
		}
		if flags.Changed("source") {
			cfg.Source = config.SourceType(serveSource)
		}
		if len(args) == 1 {
			cfg.Source = config.SourceDirectory
			cfg.Directory = args[0]
		} else if flags.Changed("dir") {
			cfg.Directory = serveDir
		}
		if flags.Changed("open") {
			cfg.OpenBrowser = serveOpen
		}
		if flags.Changed("watch") {
			cfg.Watch = serveWatch
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		g, gctx := errgroup.WithContext(ctx)

		env := router.NewEnv(router.Options{
			Prefix:        cfg.Prefix,
			Index:         cfg.Index,
			Precompressed: cfg.Precompressed,
			Logger:        logger,
		})

		var hub *bridge.Hub
		switch cfg.Source {
		case config.SourceRecords:
			database, records, err := openRecords(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := records.Count(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				logger.Warn("no files uploaded yet, run `webglserve upload <dir>`", slog.String("database", cfg.Database))
			}
			env.Attach(records)

		case config.SourceDirectory:
			dir, err := store.OpenDir(cfg.Directory)
			if err != nil {
				return err
			}
			defer dir.Close()

			if !dir.HasIndex() {
				logger.Warn("no index.html found in build directory", slog.String("dir", dir.Dir()))
			}
			env.Attach(dir)

			if cfg.Watch {
				w, err := store.NewWatcher(dir.Dir(), watchDebounce, func(paths []string) {
					env.Reset()
					logger.Info("build changed", slog.Int("files", len(paths)))
				}, logger)
				if err != nil {
					return fmt.Errorf("watching %s: %w", dir.Dir(), err)
				}
				g.Go(func() error { return w.Run(gctx) })
			}

		case config.SourceBridge:
			hub = bridge.NewHub(bridge.HubConfig{
				Timeout: cfg.Bridge.Timeout,
				Secret:  cfg.Bridge.Secret,
				Logger:  logger,
			})
			env.Attach(hub)
		}

		srv := server.New(server.Config{
			Listen:         cfg.Listen,
			Source:         string(cfg.Source),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}, env, hub, logger)
		if err := srv.Listen(); err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Listen, err)
		}

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		fmt.Fprintf(os.Stderr, "webglserve %s serving %s build at %s\n", Version, cfg.Source, srv.URL())
		if cfg.OpenBrowser {
			if err := browser.OpenURL(srv.URL()); err != nil {
				logger.Warn("could not open browser", slog.Any("err", err))
			}
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveSource, "source", "", "records, directory or bridge (overrides config)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "build directory for the directory source")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the game in the default browser")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reset extracted scripts when the build directory changes")
	rootCmd.AddCommand(serveCmd)
}
