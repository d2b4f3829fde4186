package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Branch markers understood by the ASCII front end. Both the box-drawing
// glyphs emitted by tree(1) and the plain-ASCII spellings are accepted.
var asciiMarkers = []string{"├── ", "└── ", "|-- ", "`-- ", "+-- ", "├──", "└──", "|--", "`--", "+--"}

// asciiSummaryRE matches the trailing "N directories, M files" line that
// tree(1) appends to its output. Such lines are skipped, not parsed.
var asciiSummaryRE = regexp.MustCompile(`^\d+\s+director(?:y|ies),\s+\d+\s+files?$`)

// asciiDepthUnit is the number of prefix cells that make up one nesting
// level. tree(1) indents by four cells per level; a tab counts as four.
const asciiDepthUnit = 4

// parseASCII converts tree(1)-style text into a structure tree. Nesting depth
// comes from the width of the indentation and guide prefix, with a branch
// marker adding one level on top of it. A trailing slash marks a directory.
//
// The parser keeps an explicit stack of open directories indexed by depth, so
// deeply nested input never risks exhausting the call stack.
func parseASCII(text string) (*Tree, error) {
	var topLevel []*Node
	var stack []*Node
	dotRoot := false
	implicitRoot := false
	sawEntry := false

	for i, raw := range strings.Split(text, "\n") {
		lineNum := i + 1
		line := strings.TrimRight(raw, " \t\r")
		if line == "" {
			continue
		}

		depth, name, hasMarker, err := splitASCIILine(line, lineNum)
		if err != nil {
			return nil, err
		}
		if name == "" {
			// Pure guide line ("│") used as a visual spacer.
			continue
		}
		if !hasMarker && asciiSummaryRE.MatchString(name) {
			continue
		}

		// tree(1) output starts with "." for the current directory. Map it to
		// the synthetic root so its children become the top-level entries.
		if !sawEntry && !hasMarker && depth == 0 && (name == "." || name == "./") {
			dotRoot = true
			sawEntry = true
			continue
		}
		// Input that starts straight at "├── entry" (a pasted subtree) has an
		// implied root, so the first level of branches is top level.
		if !sawEntry && hasMarker && depth == 1 {
			implicitRoot = true
		}
		sawEntry = true

		switch {
		case dotRoot:
			if depth == 0 {
				return nil, &ParseError{
					Format:  FormatASCII,
					Line:    lineNum,
					Message: `unexpected top-level entry after "." root`,
				}
			}
			depth--
		case implicitRoot && hasMarker:
			depth--
		}

		isDir := strings.HasSuffix(name, "/")
		name = strings.TrimSuffix(name, "/")
		if name == "" {
			return nil, &ParseError{
				Format:  FormatASCII,
				Line:    lineNum,
				Message: "missing entry name",
			}
		}

		if depth > len(stack) {
			return nil, &ParseError{
				Format:  FormatASCII,
				Line:    lineNum,
				Message: "malformed indentation: entry is nested more than one level below the previous entry",
			}
		}

		node := &Node{Name: name, Kind: KindFile}
		if isDir {
			node.Kind = KindDirectory
		}

		if depth == 0 {
			topLevel = append(topLevel, node)
		} else {
			parent := stack[depth-1]
			if !parent.IsDir() {
				return nil, &ParseError{
					Format:  FormatASCII,
					Line:    lineNum,
					Message: "cannot nest entries under a file: " + parent.Name,
				}
			}
			parent.Children = append(parent.Children, node)
		}

		stack = append(stack[:depth], node)
	}

	if len(topLevel) == 0 {
		if dotRoot {
			return newTree(nil), nil
		}
		return nil, &ParseError{Format: FormatASCII, Message: "empty input"}
	}
	return newTree(topLevel), nil
}

// splitASCIILine separates a line into its nesting depth and entry name. The
// returned name still carries any trailing slash; an empty name means the
// line held nothing but guide characters.
func splitASCIILine(line string, lineNum int) (depth int, name string, hasMarker bool, err error) {
	markerIdx := -1
	marker := ""
	for _, m := range asciiMarkers {
		if idx := strings.Index(line, m); idx != -1 && (markerIdx == -1 || idx < markerIdx) {
			markerIdx = idx
			marker = m
		}
	}

	if markerIdx >= 0 {
		prefix := line[:markerIdx]
		cells := 0
		for _, r := range prefix {
			switch r {
			case ' ', '│', '|':
				cells++
			case '\t':
				cells += asciiDepthUnit
			default:
				return 0, "", false, &ParseError{
					Format:  FormatASCII,
					Line:    lineNum,
					Column:  cells + 1,
					Message: "inconsistent connector: unexpected text before branch marker",
				}
			}
		}
		// Hand-written trees sometimes stretch the marker ("├──── name"), so
		// leading box-drawing dashes are trimmed along with whitespace. Plain
		// ASCII dashes are left alone since they can start a real name.
		name = strings.TrimLeft(line[markerIdx+len(marker):], "─ \t")
		name = strings.TrimSpace(name)
		if name == "" {
			return 0, "", false, &ParseError{
				Format:  FormatASCII,
				Line:    lineNum,
				Message: "missing entry name after branch marker",
			}
		}
		if err := checkASCIIName(name, lineNum); err != nil {
			return 0, "", false, err
		}
		return cells/asciiDepthUnit + 1, name, true, nil
	}

	// No branch marker: plain indentation, possibly with vertical guides.
	cells := 0
	rest := line
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if r == ' ' || r == '│' || r == '|' {
			cells++
		} else if r == '\t' {
			cells += asciiDepthUnit
		} else {
			break
		}
		rest = rest[size:]
	}
	name = strings.TrimSpace(rest)
	if name == "" {
		return 0, "", false, nil
	}
	if err := checkASCIIName(name, lineNum); err != nil {
		return 0, "", false, err
	}
	return cells / asciiDepthUnit, name, false, nil
}

// checkASCIIName rejects names that still contain box-drawing glyphs, which
// means the line mixed connector characters into the entry name.
func checkASCIIName(name string, lineNum int) error {
	if strings.ContainsAny(name, "│├└─") {
		return &ParseError{
			Format:  FormatASCII,
			Line:    lineNum,
			Message: "inconsistent connector: branch glyphs inside entry name",
		}
	}
	return nil
}
