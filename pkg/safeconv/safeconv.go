// Package safeconv provides integer conversions that clamp instead of
// wrapping around.
package safeconv

// Uint64 converts a signed size to uint64, clamping negative values to zero.
func Uint64(v int64) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}

// IntToUint64 converts int to uint64, clamping negative values to zero.
func IntToUint64(v int) uint64 {
	return Uint64(int64(v))
}
