// Package timestamp resolves build timestamps, honoring SOURCE_DATE_EPOCH
// for reproducible builds.
package timestamp

import (
	"os"
	"time"
)

// SourceDateEpochEnv the environment variable holding the override, in seconds
// since the Unix epoch. See https://reproducible-builds.org/docs/source-date-epoch/
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// LookupFunc has the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// Override returns the value of SOURCE_DATE_EPOCH as read through lookup, parsed and
// clamped to w. The boolean is false if the variable is unset or empty.
// Malformed text is not rejected; it yields whatever Parse produces for it.
func Override(lookup LookupFunc, w Width) (int64, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env, ok := lookup(SourceDateEpochEnv)
	if !ok || env == "" {
		return 0, false
	}
	return Clamp(Parse(env, w), w), true
}

// Resolve returns candidate, or the SOURCE_DATE_EPOCH override when it is set.
// The override is read at NativeWidth.
func Resolve(candidate int64) int64 {
	if v, ok := Override(os.LookupEnv, NativeWidth); ok {
		return v
	}
	return candidate
}

// GetTime returns the current time in UTC, honoring SOURCE_DATE_EPOCH if set.
func GetTime() time.Time {
	now := time.Now().UTC()
	if v, ok := Override(os.LookupEnv, NativeWidth); ok {
		return time.Unix(v, 0).UTC()
	}
	return now
}
