//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package timestamp

// NativeWidth hosts outside the unix family use 64-bit time values
const NativeWidth = Width64
