package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	reproducible "github.com/diskfs/go-reproducible"
	"github.com/diskfs/go-reproducible/sync"
	"github.com/diskfs/go-reproducible/util/timestamp"
)

var errNoEpoch = errors.New(timestamp.SourceDateEpochEnv + " is not set")

func resolver(c *cli.Context) (*reproducible.Resolver, error) {
	opts := []reproducible.Option{reproducible.WithLogger(log.StandardLogger())}
	if c.IsSet("width") {
		w := timestamp.Width(c.Int("width"))
		if !w.Valid() {
			return nil, fmt.Errorf("invalid width %d, must be 32 or 64", c.Int("width"))
		}
		opts = append(opts, reproducible.WithWidth(w))
	}
	return reproducible.New(opts...), nil
}

// epoch the override as a time, or the zero time when it is unset
func epoch(r *reproducible.Resolver) time.Time {
	v, ok := r.Epoch()
	if !ok {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("expected %d arguments, got %d: %s", n, c.NArg(), c.Command.ArgsUsage)
	}
	return nil
}

func runEpoch(c *cli.Context) error {
	r, err := resolver(c)
	if err != nil {
		return err
	}
	candidate := time.Now().Unix()
	if c.NArg() > 0 {
		candidate, err = strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid candidate %q: %w", c.Args().First(), err)
		}
	}
	fmt.Fprintln(c.App.Writer, r.Resolve(candidate))
	return nil
}

func runUUID(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	r, err := resolver(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, r.UUID(c.Args().First()))
	return nil
}

func runClamp(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	r, err := resolver(c)
	if err != nil {
		return err
	}
	e := epoch(r)
	if e.IsZero() {
		return errNoEpoch
	}
	dir := c.Args().First()
	changed, err := sync.ClampTree(dir, e)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"dir": dir, "epoch": e.Unix(), "changed": changed}).Info("clamped")
	return nil
}

func runCopy(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	r, err := resolver(c)
	if err != nil {
		return err
	}
	src, dst := c.Args().Get(0), c.Args().Get(1)
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	if err := sync.CopyDir(src, dst, epoch(r)); err != nil {
		return err
	}
	log.WithFields(log.Fields{"src": src, "dst": dst}).Info("copied")
	return nil
}

func runCompare(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	a, b := c.Args().Get(0), c.Args().Get(1)
	err := sync.CompareDirs(a, b)
	var mismatch *sync.MismatchError
	if errors.As(err, &mismatch) {
		if mismatch.Detail != "" {
			fmt.Fprintln(c.App.Writer, mismatch.Detail)
		}
		return mismatch
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "identical")
	return nil
}
