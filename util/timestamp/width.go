package timestamp

import (
	"fmt"
	"math"
)

// Width is the number of bits in the signed integer a timestamp is stored in.
type Width int

const (
	// Width32 a 32-bit signed time value, e.g. time_t on older 32-bit hosts
	Width32 Width = 32
	// Width64 a 64-bit signed time value
	Width64 Width = 64
)

// Valid reports whether w is one of the supported widths
func (w Width) Valid() bool {
	return w == Width32 || w == Width64
}

// Max the largest value representable in w. Unsupported widths are treated as 64-bit.
func (w Width) Max() int64 {
	if w == Width32 {
		return math.MaxInt32
	}
	return math.MaxInt64
}

// Min the smallest value representable in w. Unsupported widths are treated as 64-bit.
func (w Width) Min() int64 {
	if w == Width32 {
		return math.MinInt32
	}
	return math.MinInt64
}

func (w Width) String() string {
	return fmt.Sprintf("%d-bit", int(w))
}

// Clamp narrows v to w. A value outside the range of w becomes the nearest bound,
// never a wrapped value.
func Clamp(v int64, w Width) int64 {
	switch {
	case v > w.Max():
		return w.Max()
	case v < w.Min():
		return w.Min()
	default:
		return v
	}
}
