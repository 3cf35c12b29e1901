//go:build !windows

package privilege

import "os"

// IsElevated returns true if the process runs with effective UID 0 (root).
func IsElevated() bool {
	return os.Geteuid() == 0
}
