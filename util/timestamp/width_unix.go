//go:build linux || darwin || freebsd || netbsd || openbsd

package timestamp

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// NativeWidth the width of time_t on this host, taken from the seconds field of the
// kernel timespec. 32-bit linux/386 and linux/arm report Width32.
const NativeWidth = Width(unsafe.Sizeof(unix.Timespec{}.Sec) * 8)
