package engine

import (
	"context"
	"os"

	"go.uber.org/multierr"

	"github.com/cursor-tools/cursor-patch/internal/install"
	"github.com/cursor-tools/cursor-patch/internal/patching"
	"github.com/cursor-tools/cursor-patch/internal/precheck"
)

// Report is the result of a dry run. Fields are filled as far as the
// checks got; Err holds every failure encountered.
type Report struct {
	Paths      patching.InstallationPaths
	Version    string
	Constraint string

	// Pending is how many rule matches a patch would rewrite now.
	Pending      int
	BackupExists bool
	Running      []install.RunningProcess

	Err error
}

// Ready reports whether Run would get past the precondition checks.
func (r Report) Ready() bool {
	return r.Err == nil
}

// Inspect runs resolution and every precondition without taking the lock or
// writing anything.
func (e *Engine) Inspect(ctx context.Context) Report {
	rep := Report{Constraint: e.checker.Constraint().String()}

	paths, err := e.resolver.ResolveHost()
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Paths = paths

	if _, err := os.Stat(paths.BackupPath()); err == nil {
		rep.BackupExists = true
	}

	if err := e.checker.CheckFiles(paths); err != nil {
		rep.Err = multierr.Append(rep.Err, err)
	}

	if v, err := e.checker.CheckVersion(paths.Descriptor); err != nil {
		rep.Err = multierr.Append(rep.Err, err)
		if v != (precheck.Version{}) {
			rep.Version = v.String()
		}
	} else {
		rep.Version = v.String()
	}

	if n, err := e.transformer.Preview(paths.Script); err == nil {
		rep.Pending = n
	}

	if e.running != nil {
		if procs, err := e.running(ctx); err == nil {
			rep.Running = procs
		}
	}
	return rep
}
