//go:build windows

package precheck

import "golang.org/x/sys/windows"

// writable opens path for writing without truncating it. Windows has no
// access(2); this also catches read-only attributes and ACL denials.
func writable(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0)
	if err != nil {
		return err
	}
	return windows.CloseHandle(h)
}
