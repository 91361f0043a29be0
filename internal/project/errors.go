package project

import (
	"fmt"
	"net/http"
)

// ArchiveFetchError reports a failed archive download.
type ArchiveFetchError struct {
	ProjectID string
	File      string
	Status    int // HTTP status, 0 when the transfer never got a response
	Err       error
}

func (e *ArchiveFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to download %s for project %s: %d %s",
			e.File, e.ProjectID, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("failed to download %s for project %s: %v", e.File, e.ProjectID, e.Err)
}

func (e *ArchiveFetchError) Unwrap() error { return e.Err }

// ArchiveDecodeError reports an invalid archive or an entry that could
// not be decoded. Path is empty when the container itself is invalid.
type ArchiveDecodeError struct {
	Path string
	Err  error
}

func (e *ArchiveDecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to decode archive: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode archive entry %s: %v", e.Path, e.Err)
}

func (e *ArchiveDecodeError) Unwrap() error { return e.Err }

// UnsupportedEnvironmentError reports that no local write capability is
// available.
type UnsupportedEnvironmentError struct {
	Reason string
}

func (e *UnsupportedEnvironmentError) Error() string {
	return fmt.Sprintf("local export is not supported here: %s", e.Reason)
}

// UserCancelledError reports that the user declined the directory prompt.
type UserCancelledError struct{}

func (e *UserCancelledError) Error() string {
	return "operation cancelled by user"
}

// PartialWriteFailure reports a write that failed mid-export. Files
// written before it stay on disk.
type PartialWriteFailure struct {
	Path    string
	Written int
	Err     error
}

func (e *PartialWriteFailure) Error() string {
	return fmt.Sprintf("failed to write %s (%d files already written): %v", e.Path, e.Written, e.Err)
}

func (e *PartialWriteFailure) Unwrap() error { return e.Err }

// PathConflictError reports a path used both as a file and a directory.
type PathConflictError struct {
	Path string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("path conflict: %s is both a file and a directory", e.Path)
}

// EmptySegmentError reports a path with an empty segment, such as a
// leading "/" or "a//b", which cannot be addressed in the file tree.
type EmptySegmentError struct {
	Path string
}

func (e *EmptySegmentError) Error() string {
	return fmt.Sprintf("invalid path %q: empty path segment", e.Path)
}

// ConnectivityError reports that the project service is unreachable.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("could not connect to the projects server at %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
