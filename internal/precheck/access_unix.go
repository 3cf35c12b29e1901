//go:build !windows

package precheck

import "golang.org/x/sys/unix"

// writable reports whether the process may open path for writing.
func writable(path string) error {
	return unix.Access(path, unix.W_OK)
}
