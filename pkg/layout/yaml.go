package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var yamlErrLineRE = regexp.MustCompile(`line (\d+):`)

// parseYAML decodes the document into a yaml.Node tree and walks it into the
// same ordered mapping form the JSON front end produces, so the tree-building
// logic is shared rather than duplicated.
func parseYAML(text string) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, yamlError(err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ParseError{Format: FormatYAML, Message: "empty input"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Format:  FormatYAML,
			Line:    root.Line,
			Column:  root.Column,
			Message: fmt.Sprintf("top-level value must be a mapping, got %s", yamlKindName(root)),
		}
	}

	entries, err := yamlMappingEntries(root)
	if err != nil {
		return nil, err
	}
	return mappingTree(entries), nil
}

// yamlMappingEntries converts a mapping node's key/value pairs in document
// order. A nested mapping is a directory; a null scalar (explicit null, ~, or
// an empty value) is a file; everything else is a format error.
func yamlMappingEntries(node *yaml.Node) ([]mappingEntry, error) {
	entries := make([]mappingEntry, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, &ParseError{
				Format:  FormatYAML,
				Line:    keyNode.Line,
				Column:  keyNode.Column,
				Message: fmt.Sprintf("mapping key must be a scalar, got %s", yamlKindName(keyNode)),
			}
		}
		if keyNode.Value == "" {
			return nil, &ParseError{
				Format:  FormatYAML,
				Line:    keyNode.Line,
				Column:  keyNode.Column,
				Message: "entry name can't be empty",
			}
		}
		entry := mappingEntry{name: keyNode.Value, line: keyNode.Line, column: keyNode.Column}

		switch valNode.Kind {
		case yaml.MappingNode:
			children, err := yamlMappingEntries(valNode)
			if err != nil {
				return nil, err
			}
			entry.isDir = true
			entry.children = children
		case yaml.ScalarNode:
			if valNode.Tag != "!!null" {
				return nil, &ParseError{
					Format:  FormatYAML,
					Line:    valNode.Line,
					Column:  valNode.Column,
					Message: fmt.Sprintf("value for %q must be null (file) or a nested mapping (directory), got %s", keyNode.Value, yamlScalarName(valNode)),
				}
			}
		case yaml.AliasNode:
			return nil, &ParseError{
				Format:  FormatYAML,
				Line:    valNode.Line,
				Column:  valNode.Column,
				Message: fmt.Sprintf("value for %q must be null (file) or a nested mapping (directory), aliases are not supported", keyNode.Value),
			}
		default:
			return nil, &ParseError{
				Format:  FormatYAML,
				Line:    valNode.Line,
				Column:  valNode.Column,
				Message: fmt.Sprintf("value for %q must be null (file) or a nested mapping (directory), got %s", keyNode.Value, yamlKindName(valNode)),
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// yamlError converts a yaml.v3 failure into a *ParseError, extracting the
// line number the library embeds in its message when one is present.
func yamlError(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	perr := &ParseError{Format: FormatYAML, Message: msg}
	if m := yamlErrLineRE.FindStringSubmatch(msg); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			perr.Line = line
		}
	}
	return perr
}

func yamlKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}

func yamlScalarName(node *yaml.Node) string {
	switch node.Tag {
	case "!!str":
		return fmt.Sprintf("string %q", node.Value)
	case "!!int", "!!float":
		return "number " + node.Value
	case "!!bool":
		return "boolean " + node.Value
	default:
		return "scalar " + node.Value
	}
}
