package materialize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeanhaley32/projecthub/internal/constants"
	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/terminal"
)

// OSDirectory implements Directory on the local filesystem.
type OSDirectory struct {
	path string
}

// NewOSDirectory returns a Directory rooted at path, creating it if needed.
func NewOSDirectory(path string) (*OSDirectory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}
	return &OSDirectory{path: abs}, nil
}

func (d *OSDirectory) Name() string {
	return filepath.Base(d.path)
}

func (d *OSDirectory) Dir(name string) (Directory, error) {
	if err := checkSegment(name); err != nil {
		return nil, err
	}
	sub := filepath.Join(d.path, name)
	if err := os.Mkdir(sub, constants.DirPermissions); err != nil {
		if !os.IsExist(err) {
			return nil, err
		}
		info, statErr := os.Stat(sub)
		if statErr != nil {
			return nil, statErr
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s exists but is not a directory", sub)
		}
	}
	return &OSDirectory{path: sub}, nil
}

func (d *OSDirectory) WriteFile(name, content string) error {
	if err := checkSegment(name); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.path, name), []byte(content), constants.FilePermissions)
}

// checkSegment rejects names that would escape the granted directory.
func checkSegment(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("unsafe path segment %q", name)
	}
	return nil
}

// FixedPicker grants a directory chosen ahead of time (e.g. --dest).
type FixedPicker struct {
	Path string
}

func (p *FixedPicker) Pick(ctx context.Context) (Directory, error) {
	return NewOSDirectory(p.Path)
}

// PromptPicker asks on the terminal which directory to export into.
type PromptPicker struct {
	Prompter    *terminal.Prompter
	DefaultPath string
	FileCount   int
}

func (p *PromptPicker) Pick(ctx context.Context) (Directory, error) {
	input, err := p.Prompter.PromptString("Export directory (q to cancel)", p.DefaultPath)
	if err != nil {
		return nil, promptError(err)
	}
	input = strings.TrimSpace(input)
	if input == "" || input == "q" {
		return nil, &project.UserCancelledError{}
	}

	ok, err := p.Prompter.PromptConfirm(fmt.Sprintf("Write %d files into %s?", p.FileCount, input), false)
	if err != nil {
		return nil, promptError(err)
	}
	if !ok {
		return nil, &project.UserCancelledError{}
	}
	return NewOSDirectory(input)
}

// promptError treats end of input as the user declining.
func promptError(err error) error {
	if errors.Is(err, io.EOF) {
		return &project.UserCancelledError{}
	}
	return fmt.Errorf("failed to read export directory: %w", err)
}

// NewPicker picks the write capability for the current environment: a
// fixed destination when one is given, an interactive prompt on a
// terminal, and nil when neither is available.
func NewPicker(dest, defaultPath string, fileCount int) Picker {
	if dest != "" {
		return &FixedPicker{Path: dest}
	}
	if terminal.IsTerminal() {
		return &PromptPicker{Prompter: terminal.Default(), DefaultPath: defaultPath, FileCount: fileCount}
	}
	return nil
}
