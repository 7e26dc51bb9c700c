//go:build !linux

package blockio

import "github.com/marmos91/blkcache/pkg/blockio/fileprobe"

// DefaultProber returns the best Prober available on this platform:
// plain stat, since the Linux block-device ioctls don't apply here.
func DefaultProber() Prober {
	return fileprobe.Prober{}
}
