package sync

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/diskfs/go-reproducible/util"
)

const compareBlockSize = 32 * 1024

// MismatchError reports the first difference CompareFS found between two trees
type MismatchError struct {
	Path   string
	Reason string
	// Detail optional hex dump of the differing block
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s at %q", e.Reason, e.Path)
}

// CompareFS compares two fs.FS instances for identical structure, contents and
// regular file modification times. Modification times are compared to the second.
// Symlinks are not followed; their targets are compared instead.
// A difference is returned as a *MismatchError.
func CompareFS(origFS, targetFS fs.FS) error {
	return compareTrees(origFS, targetFS, "", "")
}

// CompareDirs is CompareFS for two on-disk directories
func CompareDirs(orig, target string) error {
	return compareTrees(os.DirFS(orig), os.DirFS(target), orig, target)
}

// dirEntries caches the entries of each directory read from an fs.FS
type dirEntries struct {
	fsys fs.FS
	dirs map[string]map[string]fs.DirEntry
}

// lookup the entry for p as its parent directory lists it, so symlinks are not followed
func (e *dirEntries) lookup(p string) (fs.DirEntry, error) {
	dir, name := path.Split(p)
	dir = path.Clean(dir)
	entries, ok := e.dirs[dir]
	if !ok {
		list, err := fs.ReadDir(e.fsys, dir)
		if err != nil {
			return nil, err
		}
		entries = make(map[string]fs.DirEntry, len(list))
		for _, entry := range list {
			entries[entry.Name()] = entry
		}
		e.dirs[dir] = entries
	}
	entry, ok := entries[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return entry, nil
}

func compareTrees(origFS, targetFS fs.FS, origRoot, targetRoot string) error {
	seen := make(map[string]struct{})
	target := &dirEntries{fsys: targetFS, dirs: make(map[string]map[string]fs.DirEntry)}

	err := fs.WalkDir(origFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		seen[p] = struct{}{}

		if p == "." {
			ti, err := fs.Stat(targetFS, p)
			if err != nil {
				return err
			}
			if !ti.IsDir() {
				return &MismatchError{Path: p, Reason: "type mismatch"}
			}
			return nil
		}

		td, err := target.lookup(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MismatchError{Path: p, Reason: "missing in target"}
			}
			return err
		}

		if d.Type()&fs.ModeType != td.Type()&fs.ModeType {
			return &MismatchError{Path: p, Reason: "type mismatch"}
		}
		switch {
		case d.IsDir():
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			return compareSymlinks(origFS, targetFS, origRoot, targetRoot, p)
		}

		oi, err := d.Info()
		if err != nil {
			return err
		}
		ti, err := td.Info()
		if err != nil {
			return err
		}
		if oi.Size() != ti.Size() {
			return &MismatchError{Path: p, Reason: fmt.Sprintf("size mismatch %d != %d", oi.Size(), ti.Size())}
		}
		if oi.Mode().IsRegular() && oi.ModTime().Unix() != ti.ModTime().Unix() {
			return &MismatchError{Path: p, Reason: fmt.Sprintf("modification time mismatch %s != %s", oi.ModTime().UTC(), ti.ModTime().UTC())}
		}

		return compareFileContents(origFS, targetFS, p)
	})
	if err != nil {
		return err
	}

	// Ensure target FS has no extra files
	//
	//nolint:revive // keeping args for clarity of intent.
	return fs.WalkDir(targetFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if _, ok := seen[p]; !ok {
			return &MismatchError{Path: p, Reason: "extra path in target"}
		}
		return nil
	})
}

func compareSymlinks(origFS, targetFS fs.FS, origRoot, targetRoot, p string) error {
	origLink, err := readLink(origFS, origRoot, p)
	if err != nil {
		return err
	}
	targetLink, err := readLink(targetFS, targetRoot, p)
	if err != nil {
		return err
	}
	if origLink != targetLink {
		return &MismatchError{Path: p, Reason: fmt.Sprintf("symlink target mismatch %q != %q", origLink, targetLink)}
	}
	return nil
}

func compareFileContents(a, b fs.FS, name string) error {
	af, err := a.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = af.Close() }()

	bf, err := b.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = bf.Close() }()

	bufA := make([]byte, compareBlockSize)
	bufB := make([]byte, compareBlockSize)

	var offset int64
	for {
		na, ea := io.ReadFull(af, bufA)
		nb, eb := io.ReadFull(bf, bufB)
		if ea != nil && ea != io.EOF && ea != io.ErrUnexpectedEOF {
			return ea
		}
		if eb != nil && eb != io.EOF && eb != io.ErrUnexpectedEOF {
			return eb
		}

		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			first := int64(util.FirstDiff(bufA[:na], bufB[:nb]))
			_, dump := util.DumpByteSlicesWithDiffs(bufA[:na], bufB[:nb], 16, true, true, false)
			return &MismatchError{
				Path:   name,
				Reason: fmt.Sprintf("content mismatch at byte %d", offset+first),
				Detail: dump,
			}
		}
		offset += int64(na)

		// a short read means both files ended in this block
		if na < compareBlockSize {
			return nil
		}
	}
}
