package layout

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	FormatASCII = "ascii"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists every supported input format.
var Formats = []string{FormatASCII, FormatJSON, FormatYAML}

// ParseFormat normalizes a user-supplied format selector.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatASCII:
		return FormatASCII, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("unsupported format: %q", s)
}

// FormatFromFilename infers the input format from an uploaded file's
// extension. Only .txt, .json, .yaml, and .yml files are accepted.
func FormatFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return FormatASCII, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("unsupported file extension: %q", filepath.Ext(name))
}

// Parse converts input text in the given format into the canonical structure
// tree. A failure is reported as a *ParseError carrying the offending line
// and column where the front end could determine them.
func Parse(text string, format string) (*Tree, error) {
	if !utf8.ValidString(text) {
		return nil, &ParseError{Format: format, Message: "input is not valid UTF-8"}
	}

	switch format {
	case FormatASCII:
		return parseASCII(text)
	case FormatJSON:
		return parseJSON(text)
	case FormatYAML:
		return parseYAML(text)
	}
	return nil, errors.Errorf("unsupported format: %q", format)
}
