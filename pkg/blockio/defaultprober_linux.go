//go:build linux

package blockio

import "github.com/marmos91/blkcache/pkg/blockio/linuxprobe"

// DefaultProber returns the best Prober available on this platform:
// Linux block-device ioctls.
func DefaultProber() Prober {
	return linuxprobe.Prober{}
}
