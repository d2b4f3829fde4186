package fileutils

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// illegalCharsRE matches every character that is invalid in a file or folder
// name on at least one supported platform. The set is the Windows one, which
// is the strictest: < > : " / \ | ? * plus control characters.
var illegalCharsRE = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// reservedDeviceNames are names Windows reserves for devices regardless of
// extension, so "con" and "con.txt" are both unusable.
var reservedDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// maxNameBytes is the longest name accepted. 255 bytes is the limit shared by
// the common filesystems (ext4, APFS, NTFS).
const maxNameBytes = 255

// ValidateName reports whether a single path segment is usable as a file or
// folder name on every supported platform. It is a pure check; nothing is
// sanitized or rewritten.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is empty")
	}
	if name == "." || name == ".." {
		return errors.Errorf("%q is not a usable name", name)
	}
	if loc := illegalCharsRE.FindString(name); loc != "" {
		return errors.Errorf("name contains illegal character %q", loc)
	}
	if IsReservedDeviceName(name) {
		return errors.Errorf("%q is a reserved device name on Windows", name)
	}
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return errors.New("name ends with a dot or space, which Windows strips")
	}
	if len(name) > maxNameBytes {
		return errors.Errorf("name is longer than %d bytes", maxNameBytes)
	}
	return nil
}

// IsReservedDeviceName checks a name against the Windows device name list.
// The comparison ignores case and anything after the first dot, matching how
// Windows itself resolves them.
func IsReservedDeviceName(name string) bool {
	base := name
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return reservedDeviceNames[strings.ToUpper(strings.TrimRight(base, " "))]
}
