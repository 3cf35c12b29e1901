package patching

import (
	"fmt"
	"os"
	"path/filepath"
)

// stageFile writes data to a new temp file beside target, so the final
// rename stays on one filesystem. The file is synced and carries mode. A
// directory that refuses the temp file fails the run; the target is never
// rewritten in place.
func stageFile(target string, data []byte, mode os.FileMode) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file beside %s: %w", target, err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, mode.Perm()); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	return name, nil
}

// writeFileAtomic stages data and moves it over path.
func writeFileAtomic(path string, data []byte, mode os.FileMode, replace func(src, dst string) error) error {
	tmp, err := stageFile(path, data, mode)
	if err != nil {
		return err
	}
	if err := replace(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
