package remote

import (
	"context"

	"github.com/jeanhaley32/projecthub/internal/project"
)

// Lister returns the projects offered by the remote service.
type Lister interface {
	// ListProjects returns the project listing. A non-success response
	// yields an empty listing, not an error.
	ListProjects(ctx context.Context) ([]project.Project, error)
}

// Downloader fetches raw archive bytes.
type Downloader interface {
	// Download returns the archive named file of project id.
	Download(ctx context.Context, id, file string) ([]byte, error)
}
