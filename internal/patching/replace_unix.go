//go:build !windows

package patching

import (
	"os"
	"path/filepath"
)

// replaceFile moves src over dst. rename(2) is atomic for readers of dst;
// src is always staged in dst's directory so it never crosses filesystems.
func replaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return err
	}
	syncDir(filepath.Dir(dst))
	return nil
}

// syncDir makes the rename durable. Best effort: some filesystems reject
// fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
