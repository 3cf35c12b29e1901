package install

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cursor-tools/cursor-patch/internal/patching"
)

// Installation roots per platform.
const (
	darwinRoot = "/Applications/Cursor.app/Contents/Resources/app"
	// windowsRootEnv holds the per-user data dir the installer writes under.
	windowsRootEnv = "LOCALAPPDATA"
)

var (
	windowsRelRoot = filepath.Join("Programs", "Cursor", "resources", "app")

	// linuxRoots are probed in order; the first with a descriptor wins.
	linuxRoots = []string{
		"/opt/Cursor/resources/app",
		"/usr/share/cursor/resources/app",
	}
)

// Resolver maps a platform to the descriptor and script locations. It never
// writes and never parses the descriptor.
type Resolver struct {
	log        *slog.Logger
	installDir string

	getenv func(string) string
	exists func(string) bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInstallDir skips platform discovery and uses dir as the application root.
func WithInstallDir(dir string) Option {
	return func(r *Resolver) {
		r.installDir = dir
	}
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(log *slog.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &Resolver{
		log:    log,
		getenv: os.Getenv,
		exists: pathExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the installation paths for p.
func (r *Resolver) Resolve(p Platform) (patching.InstallationPaths, error) {
	if r.installDir != "" {
		r.log.Debug("using configured install dir", "root", r.installDir)
		return PathsAt(r.installDir), nil
	}

	switch p {
	case Darwin:
		return PathsAt(darwinRoot), nil

	case Windows:
		// An unset variable yields a relative root that then fails the
		// existence check instead of failing here.
		root := filepath.Join(r.getenv(windowsRootEnv), windowsRelRoot)
		return PathsAt(root), nil

	case Linux:
		for _, root := range linuxRoots {
			paths := PathsAt(root)
			if r.exists(paths.Descriptor) {
				r.log.Debug("found installation", "root", root)
				return paths, nil
			}
			r.log.Debug("no installation at candidate root", "root", root)
		}
		return patching.InstallationPaths{}, patching.Errorf(patching.InstallationNotFound, "",
			"no installation found under %v", linuxRoots)

	default:
		return patching.InstallationPaths{}, patching.Errorf(patching.UnsupportedPlatform, "",
			"unsupported platform %s", p)
	}
}

// ResolveHost resolves paths for the running operating system.
func (r *Resolver) ResolveHost() (patching.InstallationPaths, error) {
	p, err := HostPlatform()
	if err != nil && r.installDir == "" {
		return patching.InstallationPaths{}, err
	}
	return r.Resolve(p)
}

// PathsAt builds the installation paths below an application root.
func PathsAt(root string) patching.InstallationPaths {
	return patching.InstallationPaths{
		Descriptor: filepath.Join(root, filepath.FromSlash(patching.DescriptorName)),
		Script:     filepath.Join(root, filepath.FromSlash(patching.ScriptName)),
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
