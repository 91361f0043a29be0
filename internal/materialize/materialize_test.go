package materialize

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/terminal"
)

// memDir records writes in memory and can fail on a chosen path.
type memDir struct {
	name   string
	prefix string
	fs     *memFS
}

type memFS struct {
	files    map[string]string
	dirs     map[string]bool
	attempts []string
	failOn   string
}

func newMemRoot(name, failOn string) *memDir {
	return &memDir{name: name, fs: &memFS{files: map[string]string{}, dirs: map[string]bool{}, failOn: failOn}}
}

func (d *memDir) Name() string { return d.name }

func (d *memDir) Dir(name string) (Directory, error) {
	p := d.prefix + name
	d.fs.dirs[p] = true
	return &memDir{name: name, prefix: p + "/", fs: d.fs}, nil
}

func (d *memDir) WriteFile(name, content string) error {
	p := d.prefix + name
	d.fs.attempts = append(d.fs.attempts, p)
	if p == d.fs.failOn {
		return errors.New("disk full")
	}
	d.fs.files[p] = content
	return nil
}

type stubPicker struct {
	dir Directory
	err error
}

func (s *stubPicker) Pick(context.Context) (Directory, error) { return s.dir, s.err }

func fiveFiles() *project.Snapshot {
	return project.MustSnapshot(
		"index.html", "<html></html>",
		"src/main.tsx", "main",
		"src/components/App.tsx", "app",
		"package.json", "{}",
		"src/styles/app.css", "body{}",
	)
}

func TestMaterialize_EmitsOneNotificationPerFileInOrder(t *testing.T) {
	snap := fiveFiles()
	root := newMemRoot("out", "")

	var events []Progress
	name, err := Materialize(context.Background(), snap, &stubPicker{dir: root}, func(p Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if name != "out" {
		t.Errorf("Materialize() name = %q, want out", name)
	}

	want := snap.Paths()
	if len(events) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(events), len(want))
	}
	seen := map[string]bool{}
	for i, e := range events {
		if e.Path != want[i] {
			t.Errorf("notification %d path = %q, want %q", i, e.Path, want[i])
		}
		if e.Seq != i+1 || e.Total != len(want) {
			t.Errorf("notification %d seq/total = %d/%d", i, e.Seq, e.Total)
		}
		if e.ID == "" || seen[e.ID] {
			t.Errorf("notification %d has empty or duplicate ID %q", i, e.ID)
		}
		seen[e.ID] = true
	}

	if root.fs.files["src/components/App.tsx"] != "app" {
		t.Error("nested file not written")
	}
	if !root.fs.dirs["src/components"] || !root.fs.dirs["src/styles"] {
		t.Errorf("intermediate directories not created: %v", root.fs.dirs)
	}
}

func TestMaterialize_AbortsAfterFirstFailure(t *testing.T) {
	snap := fiveFiles()
	root := newMemRoot("out", "src/components/App.tsx") // entry k=3

	var events []Progress
	_, err := Materialize(context.Background(), snap, &stubPicker{dir: root}, func(p Progress) {
		events = append(events, p)
	})

	var partial *project.PartialWriteFailure
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteFailure, got %T: %v", err, err)
	}
	if partial.Path != "src/components/App.tsx" || partial.Written != 2 {
		t.Errorf("unexpected failure %+v", partial)
	}
	if len(events) != 2 {
		t.Errorf("got %d notifications, want 2", len(events))
	}
	if len(root.fs.attempts) != 3 {
		t.Errorf("entries after the failure were attempted: %v", root.fs.attempts)
	}
	if _, ok := root.fs.files["index.html"]; !ok {
		t.Error("files written before the failure should remain")
	}
}

func TestMaterialize_UserCancelled(t *testing.T) {
	calls := 0
	_, err := Materialize(context.Background(), fiveFiles(), &stubPicker{err: &project.UserCancelledError{}}, func(Progress) {
		calls++
	})

	var cancelled *project.UserCancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected UserCancelledError, got %T: %v", err, err)
	}
	if calls != 0 {
		t.Errorf("got %d notifications, want 0", calls)
	}
}

func TestMaterialize_Unsupported(t *testing.T) {
	_, err := Materialize(context.Background(), fiveFiles(), nil, nil)

	var unsupported *project.UnsupportedEnvironmentError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedEnvironmentError, got %T: %v", err, err)
	}
}

func TestMaterialize_WritesToDisk(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "export")
	name, err := Materialize(context.Background(), fiveFiles(), &FixedPicker{Path: dest}, nil)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if name != "export" {
		t.Errorf("name = %q, want export", name)
	}

	data, err := os.ReadFile(filepath.Join(dest, "src", "components", "App.tsx"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "app" {
		t.Errorf("content = %q, want app", data)
	}

	// A second run overwrites and reuses directories.
	snap := project.MustSnapshot("src/components/App.tsx", "v2")
	if _, err := Materialize(context.Background(), snap, &FixedPicker{Path: dest}, nil); err != nil {
		t.Fatalf("second Materialize() error = %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dest, "src", "components", "App.tsx"))
	if string(data) != "v2" {
		t.Errorf("content = %q, want v2", data)
	}
}

func TestMaterialize_RejectsEscapingPaths(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "export")
	snap := project.MustSnapshot("ok.txt", "fine", "../escape.txt", "bad")

	_, err := Materialize(context.Background(), snap, &FixedPicker{Path: dest}, nil)

	var partial *project.PartialWriteFailure
	if !errors.As(err, &partial) || partial.Path != "../escape.txt" {
		t.Fatalf("expected PartialWriteFailure for ../escape.txt, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "escape.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the export directory")
	}
}

func TestPromptPicker_Cancel(t *testing.T) {
	for _, input := range []string{"q\n", "out\nn\n", ""} {
		p := &PromptPicker{
			Prompter:  terminal.NewPrompter(strings.NewReader(input), &bytes.Buffer{}),
			FileCount: 5,
		}
		_, err := p.Pick(context.Background())

		var cancelled *project.UserCancelledError
		if !errors.As(err, &cancelled) {
			t.Errorf("input %q: expected UserCancelledError, got %v", input, err)
		}
	}
}

func TestPromptPicker_ReadError(t *testing.T) {
	readErr := errors.New("stdin closed unexpectedly")
	p := &PromptPicker{
		Prompter:  terminal.NewPrompter(iotest.ErrReader(readErr), &bytes.Buffer{}),
		FileCount: 1,
	}

	_, err := p.Pick(context.Background())
	var cancelled *project.UserCancelledError
	if errors.As(err, &cancelled) {
		t.Fatalf("read failure reported as cancellation: %v", err)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("Pick() error = %v, want wrapped read error", err)
	}
}

func TestPromptPicker_Accept(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "picked")
	p := &PromptPicker{
		Prompter:    terminal.NewPrompter(strings.NewReader("\ny\n"), &bytes.Buffer{}),
		DefaultPath: dest,
		FileCount:   1,
	}

	dir, err := p.Pick(context.Background())
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if dir.Name() != "picked" {
		t.Errorf("Name() = %q, want picked", dir.Name())
	}
}

func TestNewPicker_FixedDestination(t *testing.T) {
	if _, ok := NewPicker("/tmp/x", "", 0).(*FixedPicker); !ok {
		t.Error("expected FixedPicker when a destination is given")
	}
}
