package reproducible_test

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	reproducible "github.com/diskfs/go-reproducible"
	"github.com/diskfs/go-reproducible/util/timestamp"
)

func envLookup(value string, set bool) timestamp.LookupFunc {
	return func(key string) (string, bool) {
		if key != timestamp.SourceDateEpochEnv {
			return "", false
		}
		return value, set
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		set       bool
		width     timestamp.Width
		candidate int64
		expected  int64
	}{
		{"unset keeps candidate", "", false, timestamp.Width64, 1700000000, 1700000000},
		{"empty keeps candidate", "", true, timestamp.Width64, 1700000000, 1700000000},
		{"zero", "0", true, timestamp.Width64, 1700000000, 0},
		{"override", "1000000000", true, timestamp.Width64, 1700000000, 1000000000},
		{"override 32-bit", "1000000000", true, timestamp.Width32, 1700000000, 1000000000},
		{"clamped on 32-bit", "99999999999", true, timestamp.Width32, 1700000000, math.MaxInt32},
		{"not clamped on 64-bit", "99999999999", true, timestamp.Width64, 1700000000, 99999999999},
		{"malformed", "tomorrow", true, timestamp.Width64, 1700000000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reproducible.New(
				reproducible.WithWidth(tt.width),
				reproducible.WithLookup(envLookup(tt.value, tt.set)),
			)
			require.Equal(t, tt.expected, r.Resolve(tt.candidate))
		})
	}
}

func TestIdentityForAnyCandidate(t *testing.T) {
	r := reproducible.New(reproducible.WithLookup(envLookup("", false)))
	for _, c := range []int64{math.MinInt64, -1, 0, 1, 1700000000, math.MaxInt64} {
		require.Equal(t, c, r.Resolve(c))
	}
}

func TestSubstitutionForAnyCandidate(t *testing.T) {
	r := reproducible.New(reproducible.WithLookup(envLookup("1000000000", true)))
	for _, c := range []int64{math.MinInt64, -1, 0, 1, 1700000000, math.MaxInt64} {
		require.Equal(t, int64(1000000000), r.Resolve(c))
	}
}

func TestWithWidthIgnoresUnsupported(t *testing.T) {
	r := reproducible.New(reproducible.WithWidth(timestamp.Width(12)))
	require.Equal(t, timestamp.NativeWidth, r.Width())
}

func TestPackageResolve(t *testing.T) {
	t.Setenv(timestamp.SourceDateEpochEnv, "1000000000")
	require.Equal(t, int64(1000000000), reproducible.Resolve(1700000000))
	require.Equal(t, time.Unix(1000000000, 0).UTC(), reproducible.Now())

	t.Setenv(timestamp.SourceDateEpochEnv, "")
	require.Equal(t, int64(1700000000), reproducible.Resolve(1700000000))
}

func TestTime(t *testing.T) {
	now := time.Date(2023, 11, 14, 22, 13, 20, 500, time.Local)

	r := reproducible.New(reproducible.WithLookup(envLookup("", false)))
	require.Equal(t, now, r.Time(now))

	r = reproducible.New(reproducible.WithLookup(envLookup("1609459200", true)))
	got := r.Time(now)
	require.Equal(t, time.UTC, got.Location())
	require.Equal(t, int64(1609459200), got.Unix())
	require.Equal(t, 0, got.Nanosecond())
}

func TestUUID(t *testing.T) {
	r := reproducible.New(reproducible.WithLookup(envLookup("1609459200", true)))
	a := r.UUID("rootfs")
	require.Equal(t, a, r.UUID("rootfs"))
	require.NotEqual(t, a, r.UUID("boot"))
	require.Equal(t, uuid.Version(5), a.Version())

	other := reproducible.New(reproducible.WithLookup(envLookup("1609459201", true)))
	require.NotEqual(t, a, other.UUID("rootfs"))

	random := reproducible.New(reproducible.WithLookup(envLookup("", false)))
	b := random.UUID("rootfs")
	require.Equal(t, uuid.Version(4), b.Version())
	require.NotEqual(t, b, random.UUID("rootfs"))
}

func TestResolveLogsOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetLevel(log.DebugLevel)

	r := reproducible.New(
		reproducible.WithLookup(envLookup("42", true)),
		reproducible.WithLogger(logger),
	)
	require.Equal(t, int64(42), r.Resolve(7))
	require.True(t, strings.Contains(buf.String(), timestamp.SourceDateEpochEnv), buf.String())
	require.True(t, strings.Contains(buf.String(), "epoch=42"), buf.String())
}
