package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/blkcache/internal/config"
	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blockcache"
	"github.com/marmos91/blkcache/pkg/blockio"
	appmetrics "github.com/marmos91/blkcache/pkg/metrics"
)

// loadConfig loads configuration and applies the --device/--cache
// overrides shared by every subcommand that touches a live cache.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if dev := DeviceOverride(); dev != "" {
		cfg.Device.Path = dev
	}
	if cache := CacheOverride(); cache != "" {
		cfg.Cache.Path = cache
		cfg.Cache.MapPath = cache + ".map"
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openCache loads configuration and opens the engine it describes.
func openCache(ctx context.Context) (*blockcache.Cache, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := InitLogger(cfg); err != nil {
		return nil, nil, err
	}
	if cfg.Device.Path == "" || cfg.Cache.Path == "" {
		return nil, nil, fmt.Errorf("device and cache paths are required (set in config, or pass --device/--cache)")
	}

	if cfg.Metrics.Enabled {
		appmetrics.Enable()
	}

	zeroMode := blockcache.ZeroHeuristic
	if cfg.Cache.ZeroCheckMode == "regionmap" {
		zeroMode = blockcache.ZeroCheckRegionMap
	}

	cache, err := blockcache.Open(ctx, blockcache.OpenOptions{
		DevicePath: cfg.Device.Path,
		CachePath:  cfg.Cache.Path,
		BlockSize:  cfg.Cache.BlockSize.Int64(),
		Prober:     blockio.DefaultProber(),
		Metrics:    appmetrics.NewCacheMetrics(),
		ZeroMode:   zeroMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, cfg, nil
}
