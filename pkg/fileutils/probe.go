package fileutils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DetectCaseInsensitive probes whether the filesystem holding dir folds the
// case of names, by creating a temporary file and statting its upper-cased
// twin. Duplicate-name detection follows the answer, since "Readme" and
// "readme" collide on a case-insensitive filesystem but not elsewhere.
//
// If the probe cannot run (unwritable or missing directory), the platform
// default is returned instead.
func DetectCaseInsensitive(dir string) bool {
	f, err := os.CreateTemp(dir, ".caseprobe*")
	if err != nil {
		return DefaultCaseInsensitive()
	}
	name := f.Name()
	f.Close()
	defer os.Remove(name)

	upper := strings.ToUpper(filepath.Base(name))
	_, err = os.Stat(filepath.Join(dir, upper))
	return err == nil
}

// DefaultCaseInsensitive is the per-platform assumption used when the target
// filesystem cannot be probed, e.g. during a dry run that must not touch the
// disk.
func DefaultCaseInsensitive() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return false
	}
}
