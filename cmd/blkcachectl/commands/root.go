// Package commands implements the blkcachectl CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/blkcache/cmd/blkcachectl/commands/mapfile"
	"github.com/marmos91/blkcache/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile    string
	devicePath string
	cachePath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "blkcachectl",
	Short: "blkcachectl - read-through block cache for slow or unreliable devices",
	Long: `blkcachectl transparently caches reads from a slow or error-prone block
device (an optical drive, a flaky USB disk, a disk image) to a local
backing file, tracking per-byte read status in a ddrescue-compatible
mapfile.

Use "blkcachectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/blkcache/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "backing device or image file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "cache file path (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mapfile.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// DeviceOverride returns the --device flag value, empty if unset.
func DeviceOverride() string {
	return devicePath
}

// CacheOverride returns the --cache flag value, empty if unset.
func CacheOverride() string {
	return cachePath
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	output.NewPrinter(os.Stderr, output.FormatTable, true).Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
