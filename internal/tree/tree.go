// Package tree builds a navigable folder/file hierarchy from a flat
// project snapshot.
package tree

import (
	"sort"
	"strings"

	"github.com/jeanhaley32/projecthub/internal/project"
)

// Kind distinguishes directories from files.
type Kind int

const (
	KindDir Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "dir"
}

// Node is a directory (Children set) or a leaf (File set).
type Node struct {
	Name     string
	Path     string
	Kind     Kind
	File     *project.VirtualFile
	Children map[string]*Node
}

// IsDir returns true for directory nodes.
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// SortedChildren returns the children of a directory ordered by name.
func (n *Node) SortedChildren() []*Node {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Node, 0, len(names))
	for _, name := range names {
		out = append(out, n.Children[name])
	}
	return out
}

func newDir(name, path string) *Node {
	return &Node{Name: name, Path: path, Kind: KindDir, Children: make(map[string]*Node)}
}

// Build splits every snapshot path on "/" and inserts its segments under
// an unnamed root directory. The resulting shape depends only on the set
// of paths. A segment that would be both a file and a directory fails
// with *project.PathConflictError. Empty segments are reserved for the
// root and fail with *project.EmptySegmentError.
func Build(snap *project.Snapshot) (*Node, error) {
	root := newDir("", "")
	for p, f := range snap.All() {
		if err := insert(root, p, f); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func insert(root *Node, path string, f project.VirtualFile) error {
	parts := strings.Split(path, "/")
	for _, part := range parts {
		if part == "" {
			return &project.EmptySegmentError{Path: path}
		}
	}

	current := root
	for i, part := range parts {
		cumulative := strings.Join(parts[:i+1], "/")
		last := i == len(parts)-1
		child, exists := current.Children[part]

		switch {
		case last && exists:
			// The path names a directory already created by a deeper file.
			return &project.PathConflictError{Path: cumulative}
		case last:
			file := f
			current.Children[part] = &Node{Name: part, Path: cumulative, Kind: KindFile, File: &file}
		case exists && !child.IsDir():
			return &project.PathConflictError{Path: cumulative}
		case exists:
			current = child
		default:
			child = newDir(part, cumulative)
			current.Children[part] = child
			current = child
		}
	}
	return nil
}

// Find resolves a cumulative path in the tree. The empty path is the root.
func Find(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if path == "" {
		return root
	}
	current := root
	for _, part := range strings.Split(path, "/") {
		if current.Children == nil {
			return nil
		}
		next, ok := current.Children[part]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// Flatten returns the paths of every leaf, depth-first in name order.
func Flatten(root *Node) []string {
	var out []string
	flattenRecursive(root, &out)
	return out
}

func flattenRecursive(node *Node, out *[]string) {
	if node == nil {
		return
	}
	if !node.IsDir() {
		*out = append(*out, node.Path)
		return
	}
	for _, child := range node.SortedChildren() {
		flattenRecursive(child, out)
	}
}

// Count returns the number of directories (excluding the root) and files.
func Count(root *Node) (dirs, files int) {
	if root == nil {
		return 0, 0
	}
	for _, child := range root.Children {
		if child.IsDir() {
			d, f := Count(child)
			dirs += d + 1
			files += f
		} else {
			files++
		}
	}
	return dirs, files
}
