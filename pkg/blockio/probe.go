package blockio

// Prober determines a device's capacity, native sector size, and
// whether its medium is rotational. The spec treats this as an
// external collaborator supplied by the caller; linuxprobe and
// fileprobe are the two concrete implementations this module ships.
type Prober interface {
	Probe(path string) (size int64, sectorSize int64, rotational bool, err error)
}
