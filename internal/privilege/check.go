// Package privilege reports whether the process runs with administrator
// rights, so permission failures can suggest how to retry.
package privilege

import "runtime"

// ElevationHint suggests how to retry after a permission failure, or returns
// "" when the process is already elevated.
func ElevationHint() string {
	if IsElevated() {
		return ""
	}
	return hintFor(runtime.GOOS)
}

func hintFor(goos string) string {
	switch goos {
	case "windows":
		return "re-run from an Administrator prompt"
	case "darwin", "linux":
		return "re-run with sudo"
	default:
		return "re-run as a user with write access to the installation"
	}
}
