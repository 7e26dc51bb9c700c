package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/blkcache/internal/cli/output"
	"github.com/marmos91/blkcache/pkg/blockcache"
	"github.com/spf13/cobra"
)

var statusOutputFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache coverage for the configured device",
	Long: `Display how much of the configured device is cached, the worst
region status observed, and where the device's first untried byte is.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "table", "output format: table, json, yaml")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cache, cfg, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close(ctx) }()

	status, err := cache.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	format, err := output.ParseFormat(statusOutputFormat)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		printStatusTable(cfg.Device.Path, cfg.Cache.Path, status)
		return nil
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), format, false)
	return printer.Print(statusReport{
		Device:      cfg.Device.Path,
		CacheFile:   cfg.Cache.Path,
		DeviceSize:  status.DeviceSize,
		BlockSize:   status.BlockSize,
		BlockSource: status.BlockSizeSource,
		CachedBytes: status.CachedBytes,
		WorstStatus: status.WorstStatus.String(),
		FirstUntried: status.FirstUntried,
	})
}

// statusReport is the JSON/YAML projection of a status command result.
type statusReport struct {
	Device       string `json:"device" yaml:"device"`
	CacheFile    string `json:"cache_file" yaml:"cache_file"`
	DeviceSize   int64  `json:"device_size" yaml:"device_size"`
	BlockSize    int64  `json:"block_size" yaml:"block_size"`
	BlockSource  string `json:"block_size_source" yaml:"block_size_source"`
	CachedBytes  int64  `json:"cached_bytes" yaml:"cached_bytes"`
	WorstStatus  string `json:"worst_status" yaml:"worst_status"`
	FirstUntried int64  `json:"first_untried" yaml:"first_untried"`
}

func printStatusTable(devicePath, cachePath string, status blockcache.CacheStatus) {
	fmt.Println()
	fmt.Println("blkcache status")
	fmt.Println("================")
	fmt.Println()
	fmt.Printf("  Device:        %s\n", devicePath)
	fmt.Printf("  Cache file:    %s\n", cachePath)
	fmt.Printf("  Device size:   %d bytes\n", status.DeviceSize)
	fmt.Printf("  Block size:    %d bytes (%s)\n", status.BlockSize, status.BlockSizeSource)
	fmt.Printf("  Cached:        %d / %d bytes (%.1f%%)\n",
		status.CachedBytes, status.DeviceSize, percent(status.CachedBytes, status.DeviceSize))

	fmt.Printf("  Worst status:  %s\n", output.StatusLabel(status.WorstStatus, true))

	if status.FirstUntried < status.DeviceSize {
		fmt.Printf("  First untried: offset %d\n", status.FirstUntried)
	} else {
		fmt.Printf("  First untried: none (fully read at least once)\n")
	}
	fmt.Println()
}

func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
