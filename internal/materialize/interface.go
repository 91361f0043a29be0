package materialize

import "context"

// Directory is a writable directory granted by the user.
type Directory interface {
	// Name returns the display name of the directory.
	Name() string

	// Dir returns the subdirectory name, creating it if needed.
	Dir(name string) (Directory, error)

	// WriteFile creates or overwrites the file name and writes content fully.
	WriteFile(name, content string) error
}

// Picker asks the user for a writable root directory.
type Picker interface {
	// Pick returns the granted directory, or *project.UserCancelledError
	// when the user declines.
	Pick(ctx context.Context) (Directory, error)
}
