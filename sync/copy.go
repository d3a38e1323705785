// Package sync copies and normalizes file trees so that their timestamps do not
// depend on when they were built.
package sync

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/djherbis/times.v1"
)

// excludedPaths these are excluded from any copy
var excludedPaths = map[string]bool{
	"lost+found":                true,
	".DS_Store":                 true,
	"System Volume Information": true,
}

const copyBufferSize = 32 * 1024

type copier struct {
	src fs.FS
	// srcRoot is the on-disk directory behind src, or "" if src is not backed by one.
	// Access times and extended attributes are only read when it is set.
	srcRoot string
	dst     string
	epoch   time.Time
}

// CopyTree copies files from src into the directory dst, preserving structure and contents.
// Any file time later than epoch is set to epoch, as tar --clamp-mtime does. A zero epoch
// disables clamping.
func CopyTree(src fs.FS, dst string, epoch time.Time) error {
	c := &copier{src: src, dst: dst, epoch: epoch}
	return c.run()
}

// CopyDir is CopyTree for an on-disk source directory. Unlike CopyTree it also carries over
// access times and extended attributes.
func CopyDir(src, dst string, epoch time.Time) error {
	c := &copier{src: os.DirFS(src), srcRoot: src, dst: dst, epoch: epoch}
	return c.run()
}

func (c *copier) run() error {
	if err := os.MkdirAll(c.dst, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", c.dst, err)
	}
	if err := c.copyDir("."); err != nil {
		return err
	}
	rootInfo, err := fs.Stat(c.src, ".")
	if err != nil {
		return fmt.Errorf("stat .: %w", err)
	}
	c.setTimes(".", rootInfo)
	return nil
}

func (c *copier) clamp(t time.Time) time.Time {
	return clampTime(t, c.epoch)
}

func clampTime(t, epoch time.Time) time.Time {
	if epoch.IsZero() || !t.After(epoch) {
		return t
	}
	return epoch
}

func (c *copier) target(p string) string {
	return filepath.Join(c.dst, filepath.FromSlash(p))
}

func (c *copier) copyDir(dir string) error {
	entries, err := fs.ReadDir(c.src, dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if excludedPaths[name] {
			continue
		}
		p := path.Join(dir, name)

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			if err := c.copySymlink(p); err != nil {
				return fmt.Errorf("copy symlink %s: %w", p, err)
			}
		case entry.IsDir():
			if err := os.Mkdir(c.target(p), info.Mode().Perm()|0o700); err != nil && !os.IsExist(err) {
				return fmt.Errorf("create dir %s: %w", p, err)
			}
			if err := c.copyDir(p); err != nil {
				return fmt.Errorf("copy dir %s: %w", p, err)
			}
			// the directory mtime changes as entries are written, so set it last
			c.setTimes(p, info)
		case info.Mode().IsRegular():
			if err := c.copyOneFile(p, info); err != nil {
				return fmt.Errorf("copy file %s: %w", p, err)
			}
			c.setTimes(p, info)
		default:
			log.Debugf("skipping %s with mode %v", p, info.Mode())
			continue
		}
		c.copyXattrs(p)
	}

	return nil
}

func (c *copier) copyOneFile(p string, info fs.FileInfo) error {
	in, err := c.src.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(c.target(p), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	written, err := io.CopyBuffer(out, in, make([]byte, copyBufferSize))
	if err != nil {
		_ = out.Close()
		return err
	}
	if written != info.Size() {
		_ = out.Close()
		return fmt.Errorf("copied %d bytes, expected %d: %w", written, info.Size(), io.ErrShortWrite)
	}
	return out.Close()
}

// setTimes is best-effort: content that was copied stays copied even if its times cannot be set.
// An entry without a modification time, such as a synthesized directory, gets epoch.
func (c *copier) setTimes(p string, info fs.FileInfo) {
	mtime := info.ModTime()
	if mtime.IsZero() {
		if c.epoch.IsZero() {
			return
		}
		mtime = c.epoch
	}
	atime := mtime
	if c.srcRoot != "" {
		if ts, err := times.Stat(filepath.Join(c.srcRoot, filepath.FromSlash(p))); err == nil {
			atime = ts.AccessTime()
		}
	}
	if err := os.Chtimes(c.target(p), c.clamp(atime), c.clamp(mtime)); err != nil {
		log.Debugf("unable to set times on %s: %v", p, err)
	}
}

// copySymlink the link itself keeps the time it was created with, since os.Chtimes follows links.
// Anything already at the destination path is replaced.
func (c *copier) copySymlink(p string) error {
	linkTarget, err := readLink(c.src, c.srcRoot, p)
	if err != nil {
		return err
	}
	target := c.target(p)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(linkTarget, target)
}

// readLink reads the symlink p in fsys, falling back to the on-disk root when fsys cannot
func readLink(fsys fs.FS, root, p string) (string, error) {
	type readlinker interface {
		ReadLink(string) (string, error)
	}
	switch rl, ok := fsys.(readlinker); {
	case ok:
		return rl.ReadLink(p)
	case root != "":
		return os.Readlink(filepath.Join(root, filepath.FromSlash(p)))
	default:
		return "", fmt.Errorf("filesystem does not support reading symlinks for %s", p)
	}
}
