package layout

// mappingEntry is one key/value pair from a JSON or YAML mapping, kept in
// document order. The two front ends decode into this shared form so the
// mapping-to-tree conversion exists exactly once.
type mappingEntry struct {
	name     string
	isDir    bool
	children []mappingEntry
	line     int
	column   int
}

func (e mappingEntry) node() *Node {
	n := &Node{Name: e.name, Kind: KindFile}
	if e.isDir {
		n.Kind = KindDirectory
		for _, child := range e.children {
			n.Children = append(n.Children, child.node())
		}
	}
	return n
}

// mappingTree converts top-level mapping entries into a tree under the shared
// root policy. Duplicate keys survive the conversion and are rejected later
// by Validate as duplicate siblings.
func mappingTree(entries []mappingEntry) *Tree {
	topLevel := make([]*Node, 0, len(entries))
	for _, e := range entries {
		topLevel = append(topLevel, e.node())
	}
	return newTree(topLevel)
}
