// Package util holds helpers shared by the reproducible packages
package util

import (
	"fmt"
	"strings"
)

const (
	highlightOn  = "\033[1m\033[31m"
	highlightOff = "\033[0m"
)

// DumpByteSlice dump a byte slice in hex and optionally ASCII format, like xxd.
// Each row may start with its offset in hex, decimal or both.
// If showOnlyBytes is not nil, even an empty slice, only rows containing one of those offsets
// are shown and the bytes at those offsets are highlighted.
func DumpByteSlice(b []byte, bytesPerRow int, showASCII, showPosHex, showPosDec bool, showOnlyBytes []int) string {
	if bytesPerRow <= 0 {
		bytesPerRow = 16
	}
	highlight := make(map[int]bool, len(showOnlyBytes))
	for _, v := range showOnlyBytes {
		highlight[v] = true
	}

	var out strings.Builder
	for first := 0; first < len(b); first += bytesPerRow {
		last := first + bytesPerRow
		if showOnlyBytes != nil && !anyInRange(highlight, first, last) {
			continue
		}
		if showPosHex {
			fmt.Fprintf(&out, "%08x ", first)
		}
		if showPosDec {
			fmt.Fprintf(&out, "%4d ", first)
		}
		out.WriteString(": ")
		ascii := make([]byte, 0, bytesPerRow)
		for j := first; j < last; j++ {
			// extra space every 8 bytes
			if j%8 == 0 {
				out.WriteByte(' ')
			}
			if j >= len(b) {
				out.WriteString("   ")
				ascii = append(ascii, ' ')
				continue
			}
			if highlight[j] {
				fmt.Fprintf(&out, "%s %02x%s", highlightOn, b[j], highlightOff)
			} else {
				fmt.Fprintf(&out, " %02x", b[j])
			}
			if b[j] < 32 || b[j] > 126 {
				ascii = append(ascii, '.')
			} else {
				ascii = append(ascii, b[j])
			}
		}
		if showASCII {
			fmt.Fprintf(&out, "  %s", ascii)
		}
		out.WriteByte('\n')
	}
	return out.String()
}

func anyInRange(set map[int]bool, from, to int) bool {
	for i := from; i < to; i++ {
		if set[i] {
			return true
		}
	}
	return false
}

// Diff offsets at which two byte slices differ. An offset past the end of one slice counts.
func Diff(a, b []byte) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var offsets []int
	for i := 0; i < n; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// FirstDiff offset of the first difference between a and b, or -1 if they are identical
func FirstDiff(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

// DumpByteSlicesWithDiffs show the rows of two byte slices that differ, with the differing
// bytes highlighted. If the slices are identical it returns false and an empty string.
func DumpByteSlicesWithDiffs(a, b []byte, bytesPerRow int, showASCII, showPosHex, showPosDec bool) (different bool, out string) {
	offsets := Diff(a, b)
	if len(offsets) == 0 {
		return false, ""
	}
	out = DumpByteSlice(a, bytesPerRow, showASCII, showPosHex, showPosDec, offsets)
	out += "\n"
	out += DumpByteSlice(b, bytesPerRow, showASCII, showPosHex, showPosDec, offsets)
	return true, out
}
