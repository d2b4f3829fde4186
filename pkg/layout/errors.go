package layout

import "fmt"

// ParseError describes why input text could not be turned into a structure
// tree. Line and Column are 1-based where the front end could determine them
// and 0 where it could not (e.g. whole-input errors).
type ParseError struct {
	Format  string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s: line %d, column %d: %s", e.Format, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
}

// ValidationError describes a structure tree that parsed but cannot be
// created: an illegal entry name or duplicate siblings. Path is the
// slash-joined path of the offending node relative to the base directory.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%q: %s", e.Path, e.Message)
}
