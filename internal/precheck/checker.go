package precheck

import (
	"log/slog"
	"os"

	"go.uber.org/multierr"

	"github.com/cursor-tools/cursor-patch/internal/patching"
)

// Checker validates an installation before anything is written. It only reads.
type Checker struct {
	log        *slog.Logger
	constraint Constraint
}

// NewChecker creates a Checker enforcing constraint. A nil logger discards output.
func NewChecker(log *slog.Logger, constraint Constraint) *Checker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Checker{log: log, constraint: constraint}
}

// Constraint returns the version range the checker enforces.
func (c *Checker) Constraint() Constraint {
	return c.constraint
}

// Check runs the file checks and then the version gate, returning the
// installed version when everything passes.
func (c *Checker) Check(paths patching.InstallationPaths) (Version, error) {
	if err := c.CheckFiles(paths); err != nil {
		return Version{}, err
	}
	return c.CheckVersion(paths.Descriptor)
}

// CheckFiles verifies both files are regular and writable. Every file is
// checked; all failures are returned together.
func (c *Checker) CheckFiles(paths patching.InstallationPaths) error {
	var errs error
	for _, path := range []string{paths.Descriptor, paths.Script} {
		if err := checkFile(path); err != nil {
			c.log.Error("precondition failed", "path", path, "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// CheckVersion reads the descriptor version and tests it against the constraint.
func (c *Checker) CheckVersion(descriptor string) (Version, error) {
	raw, err := ReadVersion(descriptor)
	if err != nil {
		return Version{}, err
	}
	c.log.Info("installed version", "version", raw)

	v, err := ParseVersion(raw)
	if err != nil {
		return Version{}, err
	}
	if err := c.constraint.Check(v); err != nil {
		return v, err
	}
	c.log.Debug("version accepted", "version", v.String(), "range", c.constraint.String())
	return v, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return patching.Wrap(patching.FileNotFound, path, "file does not exist", err)
	}
	if !info.Mode().IsRegular() {
		return patching.Errorf(patching.FileNotFound, path, "not a regular file")
	}
	if err := writable(path); err != nil {
		return patching.Wrap(patching.PermissionDenied, path, "no write permission", err)
	}
	return nil
}
