// Package project holds the in-memory model shared by every workspace
// component: virtual files, project snapshots and listing entries.
package project

import (
	"fmt"
	"iter"

	"github.com/jeanhaley32/projecthub/internal/constants"
)

// VirtualFile is one decoded archive entry.
type VirtualFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	IsBinary bool   `json:"isBinary"`
}

// Project is one entry of the remote project listing.
type Project struct {
	ID    string   `json:"id"`
	Files []string `json:"files"`
}

// ArchiveName returns the archive to download for the project.
func (p Project) ArchiveName() string {
	if len(p.Files) == 0 || p.Files[0] == "" {
		return constants.DefaultArchiveName
	}
	return p.Files[0]
}

// Snapshot is an immutable, ordered mapping from archive path to file.
// Iteration order is the order in which paths were first added.
type Snapshot struct {
	paths []string
	files map[string]VirtualFile
}

// NewSnapshot builds a snapshot from files. A repeated path keeps its
// first position and its last content.
func NewSnapshot(files ...VirtualFile) (*Snapshot, error) {
	s := &Snapshot{
		paths: make([]string, 0, len(files)),
		files: make(map[string]VirtualFile, len(files)),
	}
	for _, f := range files {
		if f.Path == "" {
			return nil, fmt.Errorf("snapshot: empty file path")
		}
		if _, ok := s.files[f.Path]; !ok {
			s.paths = append(s.paths, f.Path)
		}
		s.files[f.Path] = f
	}
	return s, nil
}

// MustSnapshot builds a snapshot from path/content pairs and panics on an
// empty path. Intended for tests and fixtures.
func MustSnapshot(pairs ...string) *Snapshot {
	if len(pairs)%2 != 0 {
		panic("project: MustSnapshot needs path/content pairs")
	}
	files := make([]VirtualFile, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		files = append(files, VirtualFile{Path: pairs[i], Content: pairs[i+1]})
	}
	s, err := NewSnapshot(files...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of files.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns a copy of the paths in snapshot order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.paths...)
}

// Get returns the file stored at path.
func (s *Snapshot) Get(path string) (VirtualFile, bool) {
	if s == nil {
		return VirtualFile{}, false
	}
	f, ok := s.files[path]
	return f, ok
}

// Has reports whether path exists in the snapshot.
func (s *Snapshot) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// All iterates over files in snapshot order.
func (s *Snapshot) All() iter.Seq2[string, VirtualFile] {
	return func(yield func(string, VirtualFile) bool) {
		if s == nil {
			return
		}
		for _, p := range s.paths {
			if !yield(p, s.files[p]) {
				return
			}
		}
	}
}
