// Command blkcachectl manages a read-through block cache over a local
// or removable device: reading through it, inspecting its coverage,
// validating its mapfile, and serving it over the NBD wire protocol.
package main

import (
	"github.com/marmos91/blkcache/cmd/blkcachectl/commands"

	// Import prometheus metrics to register its init() constructor.
	_ "github.com/marmos91/blkcache/pkg/metrics/prometheus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		commands.Exit("Error: %v", err)
	}
}
