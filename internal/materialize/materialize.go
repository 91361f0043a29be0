// Package materialize writes a project snapshot onto a real filesystem.
package materialize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/metrics"
	"github.com/jeanhaley32/projecthub/internal/project"
)

// Progress is emitted once per written file.
type Progress struct {
	ID    string // unique per notification
	Seq   int    // 1-based position within the run
	Total int
	Path  string
}

// Materialize recreates snap under a directory obtained from picker and
// returns the directory's display name. Entries are written sequentially
// in snapshot order and onProgress is called after each one. The first
// failing write aborts the run with *project.PartialWriteFailure; files
// already written are left in place.
func Materialize(ctx context.Context, snap *project.Snapshot, picker Picker, onProgress func(Progress)) (string, error) {
	log := logging.Named("materialize")

	if picker == nil {
		metrics.RecordMaterialize("unsupported")
		return "", &project.UnsupportedEnvironmentError{Reason: "no writable directory capability"}
	}

	root, err := picker.Pick(ctx)
	if err != nil {
		metrics.RecordMaterialize(statusOf(err))
		return "", err
	}

	log.Info("selected export directory", zap.String("dir", root.Name()), zap.Int("files", snap.Len()))

	total := snap.Len()
	written := 0
	for path, file := range snap.All() {
		if err := ctx.Err(); err != nil {
			metrics.RecordMaterialize("partial")
			return "", &project.PartialWriteFailure{Path: path, Written: written, Err: err}
		}
		if err := writeOne(root, path, file.Content); err != nil {
			metrics.RecordMaterialize("partial")
			log.Warn("export aborted", zap.String("path", path), zap.Int("written", written), zap.Error(err))
			return "", &project.PartialWriteFailure{Path: path, Written: written, Err: err}
		}
		written++
		metrics.RecordFileWritten()

		if onProgress != nil {
			onProgress(Progress{ID: uuid.NewString(), Seq: written, Total: total, Path: path})
		}
	}

	metrics.RecordMaterialize("ok")
	return root.Name(), nil
}

func writeOne(root Directory, path, content string) error {
	parts := strings.Split(path, "/")
	current := root
	for _, part := range parts[:len(parts)-1] {
		next, err := current.Dir(part)
		if err != nil {
			return fmt.Errorf("failed to create directory %s: %w", part, err)
		}
		current = next
	}
	return current.WriteFile(parts[len(parts)-1], content)
}

func statusOf(err error) string {
	switch err.(type) {
	case *project.UserCancelledError:
		return "cancelled"
	case *project.UnsupportedEnvironmentError:
		return "unsupported"
	default:
		return "error"
	}
}
