package sync

import (
	"path/filepath"
	"strings"

	"github.com/pkg/xattr"
	log "github.com/sirupsen/logrus"
)

// xattrs that record where or on which host a file came from; they are never copied
var excludedXattrPrefixes = []string{
	"com.apple.quarantine",
	"com.apple.lastuseddate",
	"com.apple.metadata:kMDItemWhereFroms",
	"security.selinux",
	"user.xdg.origin.url",
	"user.xdg.referrer.url",
}

func excludedXattr(name string) bool {
	for _, prefix := range excludedXattrPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// copyXattrs is best-effort, many filesystems do not support extended attributes at all
func (c *copier) copyXattrs(p string) {
	if c.srcRoot == "" || !xattr.XATTR_SUPPORTED {
		return
	}
	src := filepath.Join(c.srcRoot, filepath.FromSlash(p))
	names, err := xattr.LList(src)
	if err != nil {
		log.Debugf("unable to list xattrs of %s: %v", p, err)
		return
	}
	dst := c.target(p)
	for _, name := range names {
		if excludedXattr(name) {
			continue
		}
		value, err := xattr.LGet(src, name)
		if err != nil {
			log.Debugf("unable to read xattr %s of %s: %v", name, p, err)
			continue
		}
		if err := xattr.LSet(dst, name, value); err != nil {
			log.Debugf("unable to set xattr %s on %s: %v", name, p, err)
		}
	}
}
