package patching

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// Result describes how far Apply got and what it did.
type Result struct {
	State        State
	BackupPath   string
	Replacements int
}

// Transformer rewrites the target script with a fixed rule list, keeping a
// backup of the previous content and committing the new text atomically.
type Transformer struct {
	rules []Rule
	log   *slog.Logger

	// replace commits a staged file over its destination.
	replace func(src, dst string) error
}

// NewTransformer returns a Transformer using rules, or DefaultRules when none
// are given. A nil logger discards output.
func NewTransformer(log *slog.Logger, rules ...Rule) *Transformer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Transformer{
		rules:   rules,
		log:     log,
		replace: replaceFile,
	}
}

// Rules returns the rule list in application order.
func (t *Transformer) Rules() []Rule {
	return t.rules
}

// Apply patches script in place. On success the new content is committed and
// BackupPath holds the pre-patch bytes with the original mode. On failure the
// script is left unchanged.
func (t *Transformer) Apply(script string) (Result, error) {
	res := Result{State: StatePreconditionsPassed}

	info, err := os.Stat(script)
	if err != nil {
		return res, readError(script, err)
	}
	original, err := os.ReadFile(script)
	if err != nil {
		return res, readError(script, err)
	}
	res.State = StateContentRead

	patched, n := t.transform(string(original))
	res.Replacements = n
	res.State = StateTransformed
	if n == 0 {
		t.log.Info("no rule matched, script already patched or unrecognised", "path", script)
	}

	tmp, err := stageFile(script, []byte(patched), info.Mode())
	if err != nil {
		return res, Wrap(PatchWriteError, script, "stage patched script", err)
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmp)
		}
	}()

	backup := BackupPathFor(script)
	t.warnIfBackupDiffers(backup, original)
	if err := writeFileAtomic(backup, original, info.Mode(), t.replace); err != nil {
		return res, Wrap(PatchWriteError, backup, "write backup", err)
	}
	res.BackupPath = backup
	res.State = StateBackedUp
	t.log.Info("backup written", "path", backup)

	if err := t.replace(tmp, script); err != nil {
		return res, Wrap(PatchWriteError, script, "replace script", err)
	}
	committed = true
	res.State = StateCommitted
	t.log.Info("script committed", "path", script, "replacements", n)

	return res, nil
}

// Preview reports how many replacements Apply would make, without writing.
func (t *Transformer) Preview(script string) (int, error) {
	data, err := os.ReadFile(script)
	if err != nil {
		return 0, readError(script, err)
	}
	_, n := t.transform(string(data))
	return n, nil
}

// Restore copies the backup over script. The backup itself is kept.
func (t *Transformer) Restore(script string) error {
	backup := BackupPathFor(script)

	info, err := os.Stat(backup)
	if errors.Is(err, fs.ErrNotExist) {
		return Errorf(BackupNotFound, backup, "no backup found")
	}
	if err != nil {
		return Wrap(PatchWriteError, backup, "stat backup", err)
	}
	data, err := os.ReadFile(backup)
	if err != nil {
		return Wrap(PatchWriteError, backup, "read backup", err)
	}

	if err := writeFileAtomic(script, data, info.Mode(), t.replace); err != nil {
		return Wrap(PatchWriteError, script, "restore script", err)
	}
	t.log.Info("script restored from backup", "path", script, "backup", backup)
	return nil
}

func (t *Transformer) transform(text string) (string, int) {
	total := 0
	for _, rule := range t.rules {
		var n int
		text, n = rule.Apply(text)
		if n > 0 {
			t.log.Debug("rule applied", "rule", rule.Name, "matches", n)
		}
		total += n
	}
	return text, total
}

// warnIfBackupDiffers flags that an existing backup with other content is
// about to be overwritten, e.g. one taken from an older application version.
func (t *Transformer) warnIfBackupDiffers(backup string, original []byte) {
	prev, err := os.ReadFile(backup)
	if err != nil {
		return
	}
	if !bytes.Equal(prev, original) {
		t.log.Warn("overwriting existing backup with different content", "path", backup)
	}
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return Wrap(FileNotFound, path, "read script", err)
	}
	return Wrap(PatchWriteError, path, "read script", err)
}
