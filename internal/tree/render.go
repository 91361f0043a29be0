package tree

import "sync"

// Row is one visible line of a rendered tree.
type Row struct {
	Path     string
	Name     string
	Depth    int
	Kind     Kind
	Expanded bool
}

// Expansion tracks which directories are open, keyed by cumulative path.
// Directories are collapsed unless toggled open.
type Expansion struct {
	mu   sync.RWMutex
	open map[string]bool
}

// NewExpansion returns an expansion state with every directory collapsed.
func NewExpansion() *Expansion {
	return &Expansion{open: make(map[string]bool)}
}

// IsExpanded reports whether the directory at path is open.
func (e *Expansion) IsExpanded(path string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.open[path]
}

// Toggle flips the directory at path and returns its new state. Siblings
// are unaffected.
func (e *Expansion) Toggle(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[path] = !e.open[path]
	return e.open[path]
}

// ExpandAll opens every directory below root.
func (e *Expansion) ExpandAll(root *Node) {
	if root == nil {
		return
	}
	for _, child := range root.Children {
		if child.IsDir() {
			e.mu.Lock()
			e.open[child.Path] = true
			e.mu.Unlock()
			e.ExpandAll(child)
		}
	}
}

// Render lists the visible rows below root. Children of collapsed
// directories are omitted.
func Render(root *Node, exp *Expansion) []Row {
	var rows []Row
	renderRecursive(root, exp, 0, &rows)
	return rows
}

func renderRecursive(node *Node, exp *Expansion, depth int, rows *[]Row) {
	if node == nil {
		return
	}
	for _, child := range node.SortedChildren() {
		row := Row{Path: child.Path, Name: child.Name, Depth: depth, Kind: child.Kind}
		if child.IsDir() {
			row.Expanded = exp.IsExpanded(child.Path)
		}
		*rows = append(*rows, row)
		if row.Expanded {
			renderRecursive(child, exp, depth+1, rows)
		}
	}
}

// Select applies a user selection. Selecting a file returns its path and
// true; selecting a directory toggles it and returns false.
func Select(root *Node, exp *Expansion, path string) (string, bool) {
	node := Find(root, path)
	if node == nil || path == "" {
		return "", false
	}
	if node.IsDir() {
		exp.Toggle(path)
		return "", false
	}
	return node.Path, true
}
