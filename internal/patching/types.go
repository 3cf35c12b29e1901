package patching

import "strings"

// DescriptorName and ScriptName are relative to the application root.
const (
	DescriptorName = "package.json"
	ScriptName     = "out/main.js"

	// BackupSuffix is appended to the script path for the pre-patch copy.
	BackupSuffix = ".old"
)

// InstallationPaths locates the two files the engine works on.
type InstallationPaths struct {
	Descriptor string
	Script     string
}

// BackupPath returns where the pre-patch copy of the script is kept.
func (p InstallationPaths) BackupPath() string {
	return BackupPathFor(p.Script)
}

// BackupPathFor returns the backup location for a script path.
func BackupPathFor(script string) string {
	return script + BackupSuffix
}

// State is a step of a single patch run.
type State int

const (
	StateStart State = iota
	StatePathsResolved
	StatePreconditionsPassed
	StateContentRead
	StateTransformed
	StateBackedUp
	StateCommitted
	StateFailed
)

var stateNames = [...]string{
	StateStart:               "start",
	StatePathsResolved:       "paths_resolved",
	StatePreconditionsPassed: "preconditions_passed",
	StateContentRead:         "content_read",
	StateTransformed:         "transformed",
	StateBackedUp:            "backed_up",
	StateCommitted:           "committed",
	StateFailed:              "failed",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Outcome is the terminal result of a run.
type Outcome struct {
	Success    bool
	BackupPath string
	Err        error
	// State is the last state reached; StateCommitted on success.
	State State
	// Reached is the last non-failed state before Err, useful for diagnostics.
	Reached      State
	Replacements int
}

// Kind reports the failure kind, KindUnknown on success.
func (o Outcome) Kind() Kind {
	return KindOf(o.Err)
}

// Reason is a one-line, human-readable explanation of the outcome.
func (o Outcome) Reason() string {
	if o.Success {
		if o.Replacements == 0 {
			return "no changes needed, already patched"
		}
		return "patched successfully"
	}
	if o.Err == nil {
		return "failed"
	}
	return strings.ReplaceAll(o.Err.Error(), "\n", "; ")
}
