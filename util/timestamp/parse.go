package timestamp

import (
	"errors"
	"strconv"
)

// Parse reads a base-10 signed integer from the start of s the way strtol does:
// leading whitespace is skipped, an optional sign is accepted, and digits are
// consumed until the first non-digit. Anything after that is ignored.
// If there are no digits the result is 0. A value that does not fit in w
// saturates to w.Max() or w.Min().
func Parse(s string, w Width) int64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	bits := int(w)
	if !w.Valid() {
		bits = int(Width64)
	}
	// on ErrRange, ParseInt returns the bound for bits, which is what we want
	v, err := strconv.ParseInt(s[start:i], 10, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
