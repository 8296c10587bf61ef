package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/api"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/config"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Start the catalog API server.

The server lists hook models and integrations and validates hooks.
Other hookcfg instances can use it with catalog.url.

Examples:
  # Start with defaults (localhost:8090)
  hookcfg serve

  # Reload the catalog file when it changes
  hookcfg serve --watch`,
	RunE: runServe,
}

var (
	serveHost  string
	servePort  int
	serveCORS  bool
	serveWatch bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host address to bind to (default: server.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to listen on (default: server.port)")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", false,
		"Enable CORS headers")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false,
		"Reload the catalog file on change")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	src, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() {
		if err := catalog.Close(src); err != nil {
			logger.Warn("failed to close catalog", "error", err)
		}
	}()

	eventBus := events.New(100)
	defer eventBus.Close()

	server := api.NewServer(src, serverConfig(cfg.Server),
		api.WithLogger(logger),
		api.WithEventBus(eventBus),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})

	if serveWatch || cfg.Catalog.Watch {
		fp, ok := src.(*catalog.FileProvider)
		if !ok {
			logger.Warn("catalog watch needs a catalog file, ignoring", "source", cfg.Catalog.Source())
		} else {
			w := catalog.NewWatcher(fp, catalog.WithWatcherLogger(logger))
			g.Go(func() error {
				return w.Run(gctx)
			})
		}
	}

	logger.Info("server started",
		"addr", server.Addr(),
		"catalog", cfg.Catalog.Source(),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// serverConfig applies flag overrides to the configured server settings.
func serverConfig(sc config.ServerConfig) api.Config {
	def := api.DefaultConfig()
	cfg := api.Config{
		Host:            sc.Host,
		Port:            sc.Port,
		ReadTimeout:     config.ParseDurationOr(sc.ReadTimeout, def.ReadTimeout),
		WriteTimeout:    config.ParseDurationOr(sc.WriteTimeout, def.WriteTimeout),
		ShutdownTimeout: config.ParseDurationOr(sc.ShutdownTimeout, def.ShutdownTimeout),
		CORSOrigins:     sc.CORSOrigins,
		EnableCORS:      sc.EnableCORS || serveCORS,
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	return cfg
}
