package layout

import (
	"path"
	"strings"

	"github.com/Dhanunjay2704/autostruct/pkg/fileutils"
)

type ValidateOptions struct {
	// CaseInsensitive folds sibling names before duplicate detection, which
	// matches filesystems (Windows, default macOS) where "Readme" and
	// "readme" are the same entry.
	CaseInsensitive bool
}

// Validate checks every node of a parsed tree before anything touches the
// disk: names must pass the filename validator, siblings must be unique, and
// only directories may have children. The first violation aborts the run, so
// a tree that fails validation never reaches the executor.
func Validate(tree *Tree, opts ValidateOptions) error {
	if tree == nil || tree.Root == nil {
		return &ValidationError{Message: "structure tree has no root"}
	}
	if tree.Root.Synthetic() {
		if !tree.Root.IsDir() {
			return &ValidationError{Message: "synthetic root must be a directory"}
		}
		return validateChildren("", tree.Root, opts)
	}
	return validateNode("", tree.Root, opts)
}

func validateNode(parent string, node *Node, opts ValidateOptions) error {
	nodePath := path.Join(parent, node.Name)

	if err := fileutils.ValidateName(node.Name); err != nil {
		return &ValidationError{Path: nodePath, Message: err.Error()}
	}
	if !node.IsDir() {
		if node.Kind != KindFile {
			return &ValidationError{Path: nodePath, Message: "unknown node kind: " + node.Kind}
		}
		if len(node.Children) > 0 {
			return &ValidationError{Path: nodePath, Message: "file cannot have children"}
		}
		return nil
	}
	return validateChildren(nodePath, node, opts)
}

func validateChildren(nodePath string, node *Node, opts ValidateOptions) error {
	seen := make(map[string]string, len(node.Children))
	for _, child := range node.Children {
		key := child.Name
		if opts.CaseInsensitive {
			key = strings.ToLower(key)
		}
		if prev, ok := seen[key]; ok {
			msg := "duplicate sibling name: " + child.Name
			if prev != child.Name {
				msg += " conflicts with " + prev + " on a case-insensitive filesystem"
			}
			return &ValidationError{Path: path.Join(nodePath, child.Name), Message: msg}
		}
		seen[key] = child.Name

		if err := validateNode(nodePath, child, opts); err != nil {
			return err
		}
	}
	return nil
}
