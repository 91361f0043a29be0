package sandbox

import "context"

// Host runs a synthesized preview document in isolation. The document is
// inert markup to the host; it never inspects what the page does.
type Host interface {
	// Load replaces the document the host renders.
	Load(ctx context.Context, doc string) error
}
