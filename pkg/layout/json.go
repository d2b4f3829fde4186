package layout

// The JSON front end walks the document token by token instead of decoding
// into a map so that key order is preserved. Children must come out in
// document order for the executor's pre-order listing to be meaningful.
// The standard library decoder is used here because it exposes token-level
// input offsets for error locators.

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

func parseJSON(text string) (*Tree, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, jsonError(text, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		line, col := lineColAt(text, dec.InputOffset())
		return nil, &ParseError{
			Format:  FormatJSON,
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("top-level value must be an object, got %s", jsonTokenName(tok)),
		}
	}

	entries, err := decodeJSONObject(text, dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		line, col := lineColAt(text, dec.InputOffset())
		return nil, &ParseError{
			Format:  FormatJSON,
			Line:    line,
			Column:  col,
			Message: "unexpected data after top-level object",
		}
	}

	return mappingTree(entries), nil
}

// decodeJSONObject reads the members of an object whose opening brace has
// already been consumed, up to and including the closing brace.
func decodeJSONObject(text string, dec *json.Decoder) ([]mappingEntry, error) {
	var entries []mappingEntry

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, jsonError(text, err)
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return entries, nil
		}

		// Inside an object, a non-delimiter token is always a member key.
		key, ok := tok.(string)
		if !ok {
			line, col := lineColAt(text, dec.InputOffset())
			return nil, &ParseError{
				Format:  FormatJSON,
				Line:    line,
				Column:  col,
				Message: fmt.Sprintf("object key must be a string, got %s", jsonTokenName(tok)),
			}
		}
		if key == "" {
			line, col := lineColAt(text, dec.InputOffset())
			return nil, &ParseError{
				Format:  FormatJSON,
				Line:    line,
				Column:  col,
				Message: "entry name can't be empty",
			}
		}
		entry := mappingEntry{name: key}
		entry.line, entry.column = lineColAt(text, dec.InputOffset())

		valTok, err := dec.Token()
		if err != nil {
			return nil, jsonError(text, err)
		}
		switch v := valTok.(type) {
		case nil:
			// null marks a file
		case json.Delim:
			if v != '{' {
				line, col := lineColAt(text, dec.InputOffset())
				return nil, &ParseError{
					Format:  FormatJSON,
					Line:    line,
					Column:  col,
					Message: fmt.Sprintf("value for %q must be null (file) or an object (directory), got array", key),
				}
			}
			children, err := decodeJSONObject(text, dec)
			if err != nil {
				return nil, err
			}
			entry.isDir = true
			entry.children = children
		default:
			line, col := lineColAt(text, dec.InputOffset())
			return nil, &ParseError{
				Format:  FormatJSON,
				Line:    line,
				Column:  col,
				Message: fmt.Sprintf("value for %q must be null (file) or an object (directory), got %s", key, jsonTokenName(valTok)),
			}
		}

		entries = append(entries, entry)
	}
}

// jsonError converts a decoder failure into a *ParseError, passing the
// standard library's message and position through.
func jsonError(text string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Format: FormatJSON, Message: "unexpected end of input"}
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col := lineColAt(text, syn.Offset)
		return &ParseError{Format: FormatJSON, Line: line, Column: col, Message: syn.Error()}
	}
	return &ParseError{Format: FormatJSON, Message: err.Error()}
}

func jsonTokenName(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case json.Delim:
		if v == '[' || v == ']' {
			return "array"
		}
		return "object"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

// lineColAt converts a byte offset into 1-based line and column numbers.
func lineColAt(text string, offset int64) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line = strings.Count(prefix, "\n") + 1
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		col = len(prefix) - idx
	} else {
		col = len(prefix) + 1
	}
	return line, col
}
