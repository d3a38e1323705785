package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/djherbis/times.v1"
)

// ClampTree sets the modification time of every entry under root that is later than epoch
// to epoch. The access time of those entries is clamped along with it. Symlinks are not
// followed. It returns the number of entries that changed.
func ClampTree(root string, epoch time.Time) (int, error) {
	if epoch.IsZero() {
		return 0, errors.New("must pass a non-zero epoch")
	}
	changed := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		ts := times.Get(info)
		atime, mtime := ts.AccessTime(), ts.ModTime()
		if !mtime.After(epoch) {
			return nil
		}
		if err := os.Chtimes(p, clampTime(atime, epoch), clampTime(mtime, epoch)); err != nil {
			return fmt.Errorf("set times on %s: %w", p, err)
		}
		changed++
		return nil
	})
	return changed, err
}
