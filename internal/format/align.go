package format

import "golang.org/x/exp/constraints"

// RoundUp returns the smallest multiple of mult that is >= n.
// mult must be a power of two.
//
// Example:
//
//	RoundUp(1, 8)  = 8
//	RoundUp(8, 8)  = 8
//	RoundUp(9, 8)  = 16
//	RoundUp(24, 8) = 24
func RoundUp[T constraints.Integer](n, mult T) T {
	return (n + mult - 1) &^ (mult - 1)
}

// RoundDown returns the largest multiple of mult that is <= n.
// mult must be a power of two.
func RoundDown[T constraints.Integer](n, mult T) T {
	return n &^ (mult - 1)
}

// Align returns n rounded up to Alignment.
func Align(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}
