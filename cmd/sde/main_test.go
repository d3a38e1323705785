package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diskfs/go-reproducible/sync"
	"github.com/diskfs/go-reproducible/util/timestamp"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	err := app.Run(append([]string{"sde"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestEpoch(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		args     []string
		expected string
	}{
		{"unset", "", []string{"epoch", "1700000000"}, "1700000000"},
		{"override", "1000000000", []string{"epoch", "1700000000"}, "1000000000"},
		{"zero", "0", []string{"epoch", "1700000000"}, "0"},
		{"clamped 32-bit", "99999999999", []string{"epoch", "--width", "32", "1700000000"}, "2147483647"},
		{"wide 64-bit", "99999999999", []string{"epoch", "--width", "64", "1700000000"}, "99999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(timestamp.SourceDateEpochEnv, tt.env)
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestEpochErrors(t *testing.T) {
	t.Setenv(timestamp.SourceDateEpochEnv, "")
	_, err := run(t, "epoch", "--width", "16")
	require.Error(t, err)
	_, err = run(t, "epoch", "soon")
	require.Error(t, err)
}

func TestUUID(t *testing.T) {
	t.Setenv(timestamp.SourceDateEpochEnv, "1609459200")
	first, err := run(t, "uuid", "rootfs")
	require.NoError(t, err)
	second, err := run(t, "uuid", "rootfs")
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = run(t, "uuid")
	require.Error(t, err)
}

func TestClampRequiresEpoch(t *testing.T) {
	t.Setenv(timestamp.SourceDateEpochEnv, "")
	_, err := run(t, "clamp", t.TempDir())
	require.ErrorIs(t, err, errNoEpoch)
}

func TestCopyAndCompare(t *testing.T) {
	t.Setenv(timestamp.SourceDateEpochEnv, "1609459200")
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))

	dst1 := filepath.Join(t.TempDir(), "one")
	dst2 := filepath.Join(t.TempDir(), "two")
	_, err := run(t, "copy", src, dst1)
	require.NoError(t, err)
	// a second build of the same tree, later
	require.NoError(t, os.Chtimes(filepath.Join(src, "a.txt"), time.Now(), time.Now().Add(time.Hour)))
	_, err = run(t, "copy", src, dst2)
	require.NoError(t, err)

	out, err := run(t, "compare", dst1, dst2)
	require.NoError(t, err)
	require.Equal(t, "identical", out)

	require.NoError(t, os.WriteFile(filepath.Join(dst2, "a.txt"), []byte("b"), 0o644))
	_, err = run(t, "compare", dst1, dst2)
	var mismatch *sync.MismatchError
	require.True(t, errors.As(err, &mismatch), "expected mismatch, got %v", err)
}
