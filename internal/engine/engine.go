// Package engine runs the resolve, check and transform pipeline against a
// single installation and records the result.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/cursor-tools/cursor-patch/internal/audit"
	"github.com/cursor-tools/cursor-patch/internal/install"
	"github.com/cursor-tools/cursor-patch/internal/patching"
	"github.com/cursor-tools/cursor-patch/internal/precheck"
)

// Engine wires the resolver, checker and transformer together. Each call is
// an independent run; nothing is carried between runs.
type Engine struct {
	log         *slog.Logger
	resolver    *install.Resolver
	checker     *precheck.Checker
	transformer *patching.Transformer

	history *audit.Logger
	lock    bool
	lockDir string

	running func(context.Context) ([]install.RunningProcess, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory records every patch and restore run in h.
func WithHistory(h *audit.Logger) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithoutLock disables the per-installation run lock.
func WithoutLock() Option {
	return func(e *Engine) {
		e.lock = false
	}
}

// WithLockDir places lock files in dir instead of the system temp dir.
func WithLockDir(dir string) Option {
	return func(e *Engine) {
		e.lockDir = dir
	}
}

// New creates an Engine. A nil logger discards output.
func New(log *slog.Logger, resolver *install.Resolver, checker *precheck.Checker, transformer *patching.Transformer, opts ...Option) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		log:         log,
		resolver:    resolver,
		checker:     checker,
		transformer: transformer,
		lock:        true,
		lockDir:     os.TempDir(),
		running:     install.RunningProcesses,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run patches the host installation. The returned Outcome is terminal: either
// Committed with the backup path, or Failed with the kind and the last state
// reached before the failure.
func (e *Engine) Run(ctx context.Context) patching.Outcome {
	out := patching.Outcome{State: patching.StateStart, Reached: patching.StateStart}
	var version precheck.Version

	fail := func(err error) patching.Outcome {
		out.Err = err
		out.Reached = out.State
		out.State = patching.StateFailed
		e.log.Error("patch failed", "state", out.Reached.String(), "kind", out.Kind().String(), "error", err)
		e.record(audit.EventPatchFailed, out, version)
		return out
	}

	paths, err := e.resolver.ResolveHost()
	if err != nil {
		return fail(err)
	}
	out.State = patching.StatePathsResolved
	e.log.Info("installation resolved", "descriptor", paths.Descriptor, "script", paths.Script)

	unlock, err := e.acquire(paths.Script)
	if err != nil {
		return fail(err)
	}
	defer unlock()

	version, err = e.checker.Check(paths)
	if err != nil {
		return fail(err)
	}
	out.State = patching.StatePreconditionsPassed

	e.warnIfRunning(ctx)

	res, err := e.transformer.Apply(paths.Script)
	out.State = res.State
	out.Replacements = res.Replacements
	out.BackupPath = res.BackupPath
	if err != nil {
		return fail(err)
	}

	out.Success = true
	out.Reached = out.State
	e.log.Info("patch complete", "version", version.String(), "backup", out.BackupPath, "replacements", out.Replacements)
	e.record(audit.EventPatchApplied, out, version)
	return out
}

// Restore copies the backup over the script of the host installation.
// Version and permission checks on the descriptor are skipped so a patch
// made by an older release can still be undone.
func (e *Engine) Restore(ctx context.Context) error {
	paths, err := e.resolver.ResolveHost()
	if err != nil {
		return err
	}

	unlock, err := e.acquire(paths.Script)
	if err != nil {
		return err
	}
	defer unlock()

	e.warnIfRunning(ctx)

	details := map[string]any{"script": paths.Script, "backup": paths.BackupPath()}
	if err := e.transformer.Restore(paths.Script); err != nil {
		details["kind"] = patching.KindOf(err).String()
		details["error"] = err.Error()
		e.history.Log(audit.EventRestoreFailed, details)
		return err
	}
	e.history.Log(audit.EventRestored, details)
	return nil
}

// acquire takes the advisory lock for script and returns its release func.
func (e *Engine) acquire(script string) (func(), error) {
	if !e.lock {
		return func() {}, nil
	}

	path := LockPath(e.lockDir, script)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, patching.Wrap(patching.InstanceLocked, path, "acquire run lock", err)
	}
	if !ok {
		return nil, patching.Errorf(patching.InstanceLocked, path, "another run holds the lock")
	}
	e.log.Debug("run lock acquired", "path", path)

	return func() {
		if err := fl.Unlock(); err != nil {
			e.log.Warn("release run lock", "path", path, "error", err)
		}
	}, nil
}

// LockPath is the lock file guarding script; one per installation.
func LockPath(dir, script string) string {
	abs, err := filepath.Abs(script)
	if err != nil {
		abs = script
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, "cursor-patch-"+hex.EncodeToString(sum[:])[:16]+".lock")
}

func (e *Engine) warnIfRunning(ctx context.Context) {
	if e.running == nil {
		return
	}
	procs, err := e.running(ctx)
	if err != nil {
		e.log.Debug("process listing unavailable", "error", err)
		return
	}
	for _, p := range procs {
		e.log.Warn("application is running, restart it for the change to take effect", "pid", p.PID, "name", p.Name)
	}
}

func (e *Engine) record(event string, out patching.Outcome, version precheck.Version) {
	details := map[string]any{
		"state":        out.State.String(),
		"replacements": out.Replacements,
	}
	if version != (precheck.Version{}) {
		details["version"] = version.String()
	}
	if out.BackupPath != "" {
		details["backup"] = out.BackupPath
	}
	if out.Err != nil {
		details["reached"] = out.Reached.String()
		details["kind"] = out.Kind().String()
		details["error"] = out.Err.Error()
	}
	e.history.Log(event, details)
}
