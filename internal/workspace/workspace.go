// Package workspace owns the active project session. Each selection
// replaces the session wholesale; results of superseded selections are
// discarded.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/materialize"
	"github.com/jeanhaley32/projecthub/internal/metrics"
	"github.com/jeanhaley32/projecthub/internal/preview"
	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/tree"
)

// ErrStaleSelection is returned by Select when a newer selection was made
// while the archive was loading.
var ErrStaleSelection = errors.New("selection superseded by a newer one")

// ErrNotReady is returned by operations that need a loaded project.
var ErrNotReady = errors.New("no project loaded")

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Loader produces a snapshot for a project.
type Loader interface {
	Load(ctx context.Context, p project.Project) (*project.Snapshot, error)
}

// Session is an immutable view of the active project.
type Session struct {
	Token    uint64
	Project  project.Project
	Status   Status
	Snapshot *project.Snapshot
	Err      error
	Selected string
}

// Workspace is the top-level controller's session holder.
type Workspace struct {
	loader Loader
	log    *zap.Logger
	seq    atomic.Uint64

	mu      sync.RWMutex
	current *Session
}

// New creates a Workspace in the idle state.
func New(loader Loader, log *zap.Logger) *Workspace {
	if log == nil {
		log = logging.Named("workspace")
	}
	return &Workspace{
		loader:  loader,
		log:     log,
		current: &Session{Status: StatusIdle},
	}
}

// Current returns the active session.
func (w *Workspace) Current() *Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Select makes p the active project and loads it. The session becomes
// loading immediately; the load result is applied only if no newer
// selection happened meanwhile, otherwise ErrStaleSelection is returned.
func (w *Workspace) Select(ctx context.Context, p project.Project) (*Session, error) {
	token := w.seq.Add(1)
	w.replace(&Session{Token: token, Project: p, Status: StatusLoading})

	snap, err := w.loader.Load(ctx, p)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current.Token != token {
		metrics.RecordStaleSelection()
		w.log.Debug("discarding stale ingestion result",
			zap.String("project", p.ID),
			zap.Uint64("token", token),
			zap.Uint64("current", w.current.Token))
		return nil, ErrStaleSelection
	}

	next := &Session{Token: token, Project: p, Status: StatusReady, Snapshot: snap}
	if err != nil {
		next = &Session{Token: token, Project: p, Status: StatusError, Err: err}
		w.log.Warn("project load failed", zap.String("project", p.ID), zap.Error(err))
	}
	w.current = next
	return next, err
}

// Adopt installs an already-decoded snapshot (e.g. a local archive) as a
// new ready session.
func (w *Workspace) Adopt(p project.Project, snap *project.Snapshot) *Session {
	s := &Session{Token: w.seq.Add(1), Project: p, Status: StatusReady, Snapshot: snap}
	w.replace(s)
	return s
}

func (w *Workspace) replace(s *Session) {
	w.mu.Lock()
	w.current = s
	w.mu.Unlock()
}

func (w *Workspace) ready() (*Session, error) {
	s := w.Current()
	if s.Status != StatusReady {
		return nil, ErrNotReady
	}
	return s, nil
}

// SelectFile records the selected file path of the ready session.
func (w *Workspace) SelectFile(path string) (project.VirtualFile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current.Status != StatusReady {
		return project.VirtualFile{}, ErrNotReady
	}
	f, ok := w.current.Snapshot.Get(path)
	if !ok {
		return project.VirtualFile{}, fmt.Errorf("file not found: %s", path)
	}
	next := *w.current
	next.Selected = path
	w.current = &next
	return f, nil
}

// Tree builds the file tree of the ready session.
func (w *Workspace) Tree() (*tree.Node, error) {
	s, err := w.ready()
	if err != nil {
		return nil, err
	}
	return tree.Build(s.Snapshot)
}

// Preview synthesizes the preview document of the ready session. Reloading
// a preview is calling Preview again.
func (w *Workspace) Preview() (string, error) {
	s, err := w.ready()
	if err != nil {
		return "", err
	}
	return preview.Synthesize(s.Snapshot), nil
}

// Export materializes the ready session's snapshot.
func (w *Workspace) Export(ctx context.Context, picker materialize.Picker, onProgress func(materialize.Progress)) (string, error) {
	s, err := w.ready()
	if err != nil {
		return "", err
	}
	return materialize.Materialize(ctx, s.Snapshot, picker, onProgress)
}
