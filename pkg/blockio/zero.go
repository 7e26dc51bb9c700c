package blockio

// IsAllZero reports whether every byte in data is zero. A sparse cache
// file reads as all-zero for any region never written to, which is
// indistinguishable from a device block that is genuinely all zero —
// blockcache treats an all-zero cache read as a miss on that basis
// (spec's documented, deliberate approximation).
func IsAllZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
