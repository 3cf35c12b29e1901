package install

import (
	"runtime"

	"github.com/cursor-tools/cursor-patch/internal/patching"
)

// Platform is one of the operating systems the application ships for.
type Platform int

const (
	Darwin Platform = iota + 1
	Windows
	Linux
)

func (p Platform) String() string {
	switch p {
	case Darwin:
		return "darwin"
	case Windows:
		return "windows"
	case Linux:
		return "linux"
	default:
		return "unsupported"
	}
}

// Platforms lists every supported platform.
func Platforms() []Platform {
	return []Platform{Darwin, Windows, Linux}
}

// ParsePlatform maps a GOOS value to a Platform.
func ParsePlatform(goos string) (Platform, error) {
	switch goos {
	case "darwin":
		return Darwin, nil
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	default:
		return 0, patching.Errorf(patching.UnsupportedPlatform, "", "unsupported operating system %q", goos)
	}
}

// HostPlatform returns the platform this binary runs on.
func HostPlatform() (Platform, error) {
	return ParsePlatform(runtime.GOOS)
}
