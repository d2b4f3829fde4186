package layout

import (
	"path"

	"github.com/pkg/errors"
)

const (
	KindDirectory = "directory"
	KindFile      = "file"
)

// Node is one directory or file entry in a structure tree.
type Node struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Children []*Node `json:"children,omitempty"`
}

// Synthetic reports whether the node is the synthetic root that stands for
// the base directory itself. It is never created on disk and never appears
// in walk output.
func (n *Node) Synthetic() bool {
	return n.Name == ""
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// Tree is the canonical structure produced by all three parsers. It is built
// once during parsing and never mutated afterward.
type Tree struct {
	Root *Node `json:"root"`
}

// WalkFunc is called once per non-synthetic node with the node's slash-joined
// path relative to the base directory. Returning an error stops the walk.
type WalkFunc func(relPath string, node *Node) error

// Walk visits every non-synthetic node in depth-first pre-order: a directory
// before its children, children before the next sibling. This is the single
// iteration order shared by the dry-run listing and create mode, so the two
// always agree on the set and order of paths.
func (t *Tree) Walk(fn WalkFunc) error {
	if t == nil || t.Root == nil {
		return errors.New("structure tree has no root")
	}
	if t.Root.Synthetic() {
		for _, child := range t.Root.Children {
			if err := walkNode("", child, fn); err != nil {
				return err
			}
		}
		return nil
	}
	return walkNode("", t.Root, fn)
}

func walkNode(parent string, node *Node, fn WalkFunc) error {
	relPath := path.Join(parent, node.Name)
	if err := fn(relPath, node); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := walkNode(relPath, child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the number of non-synthetic nodes and the maximum nesting
// depth of the tree. The root counts as depth 1; a synthetic root does not
// count at all.
func (t *Tree) Stats() (nodes int, maxDepth int) {
	if t == nil || t.Root == nil {
		return 0, 0
	}
	if t.Root.Synthetic() {
		for _, child := range t.Root.Children {
			n, d := nodeStats(child, 1)
			nodes += n
			if d > maxDepth {
				maxDepth = d
			}
		}
		return nodes, maxDepth
	}
	return nodeStats(t.Root, 1)
}

func nodeStats(node *Node, depth int) (int, int) {
	nodes := 1
	maxDepth := depth
	for _, child := range node.Children {
		n, d := nodeStats(child, depth+1)
		nodes += n
		if d > maxDepth {
			maxDepth = d
		}
	}
	return nodes, maxDepth
}

// newTree applies the root policy shared by all parsers: a single top-level
// entry becomes the root, while multiple top-level entries are wrapped in a
// synthetic root directory that stands for the base directory itself.
func newTree(topLevel []*Node) *Tree {
	if len(topLevel) == 1 {
		return &Tree{Root: topLevel[0]}
	}
	return &Tree{Root: &Node{Kind: KindDirectory, Children: topLevel}}
}
