package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/internal/nbdwire"
	"github.com/marmos91/blkcache/pkg/blockio"
	appmetrics "github.com/marmos91/blkcache/pkg/metrics"
	"github.com/marmos91/blkcache/pkg/plugin"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cache over the NBD wire protocol",
	Long: `Run a standalone NBD server exposing the configured device through
the cache, without depending on nbdkit or libnbd. Use this when nbdkit
isn't available; for a real nbdkit deployment, load pkg/nbdkit as a
.so plugin instead.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "address to listen on (overrides config, default 127.0.0.1:10809)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}
	if cfg.Device.Path == "" || cfg.Cache.Path == "" {
		return fmt.Errorf("device and cache paths are required (set in config, or pass --device/--cache)")
	}
	if cfg.Metrics.Enabled {
		appmetrics.Enable()
	}

	listen := cfg.Serve.Listen
	if serveListen != "" {
		listen = serveListen
	}

	adapter := plugin.NewAdapter(blockio.DefaultProber()).WithMetrics(appmetrics.NewCacheMetrics())
	if err := adapter.Config("device", cfg.Device.Path); err != nil {
		return fmt.Errorf("configure device: %w", err)
	}
	if err := adapter.Config("cache", cfg.Cache.Path); err != nil {
		return fmt.Errorf("configure cache: %w", err)
	}
	if cfg.Cache.BlockSize > 0 {
		if err := adapter.Config("block_size", fmt.Sprintf("%d", cfg.Cache.BlockSize)); err != nil {
			return fmt.Errorf("configure block_size: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := adapter.ConfigComplete(ctx); err != nil {
		return fmt.Errorf("config_complete: %w", err)
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listen, err)
	}
	defer ln.Close()

	logger.InfoCtx(ctx, "nbd server listening", logger.Device(cfg.Device.Path), logger.CachePath(cfg.Cache.Path))

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- nbdwire.Serve(ctx, ln, adapter)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.InfoCtx(ctx, "shutdown signal received")
		cancel()
		_ = ln.Close()
		<-serveDone
		return nil
	case err := <-serveDone:
		return err
	}
}
