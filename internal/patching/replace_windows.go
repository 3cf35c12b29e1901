//go:build windows

package patching

import (
	"os"

	"golang.org/x/sys/windows"
)

// replaceFile moves src over dst with MoveFileEx. src is staged in dst's
// directory, so this is always a same-volume rename.
func replaceFile(src, dst string) error {
	from, err := windows.UTF16PtrFromString(src)
	if err != nil {
		return err
	}
	to, err := windows.UTF16PtrFromString(dst)
	if err != nil {
		return err
	}

	flags := uint32(windows.MOVEFILE_REPLACE_EXISTING | windows.MOVEFILE_WRITE_THROUGH)
	if err := windows.MoveFileEx(from, to, flags); err != nil {
		return &os.LinkError{Op: "movefileex", Old: src, New: dst, Err: err}
	}
	return nil
}
