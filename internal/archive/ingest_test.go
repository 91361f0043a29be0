package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/tree"
)

type entry struct {
	name    string
	content string
}

func buildZip(t *testing.T, method uint16, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			t.Fatalf("CreateHeader(%s) error = %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatalf("Write(%s) error = %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

type fakeDownloader struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, id, file string) ([]byte, error) {
	f.calls = append(f.calls, id+"/"+file)
	return f.data, f.err
}

func TestDecode_SkipsDirectoriesAndKeepsOrder(t *testing.T) {
	data := buildZip(t, zip.Deflate,
		entry{"src/", ""},
		entry{"src/main.tsx", "console.log(1)"},
		entry{"index.html", "<html></html>"},
		entry{"src/components/", ""},
		entry{"src/components/App.tsx", "export default 1"},
	)

	snap, err := Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{"src/main.tsx", "index.html", "src/components/App.tsx"}
	got := snap.Paths()
	if len(got) != len(want) {
		t.Fatalf("Paths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Paths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	f, _ := snap.Get("src/main.tsx")
	if f.Content != "console.log(1)" || f.IsBinary {
		t.Errorf("unexpected file %+v", f)
	}
}

func TestDecode_RoundTripThroughTree(t *testing.T) {
	data := buildZip(t, zip.Deflate,
		entry{"a/", ""},
		entry{"a/b/c.txt", "c"},
		entry{"a/d.txt", "d"},
		entry{"e.txt", "e"},
	)

	snap, err := Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	root, err := tree.Build(snap)
	if err != nil {
		t.Fatalf("tree.Build() error = %v", err)
	}

	got := tree.Flatten(root)
	sort.Strings(got)
	want := []string{"a/b/c.txt", "a/d.txt", "e.txt"}
	if len(got) != len(want) {
		t.Fatalf("Flatten() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Flatten()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDecode_InvalidUTF8IsReplaced(t *testing.T) {
	data := buildZip(t, zip.Store, entry{"bin.dat", "ok\xffok"})

	snap, err := Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	f, _ := snap.Get("bin.dat")
	if f.Content != "ok�ok" {
		t.Errorf("Content = %q, want replacement character", f.Content)
	}
}

func TestDecode_NotAnArchive(t *testing.T) {
	_, err := Decode(context.Background(), []byte("definitely not a zip"))

	var decodeErr *project.ArchiveDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ArchiveDecodeError, got %T: %v", err, err)
	}
	if decodeErr.Path != "" {
		t.Errorf("container error should have empty path, got %q", decodeErr.Path)
	}
}

func TestDecode_CorruptEntryFailsWholeIngestion(t *testing.T) {
	data := buildZip(t, zip.Store,
		entry{"good.txt", "fine"},
		entry{"bad.txt", "UNIQUE-PAYLOAD"},
	)
	idx := bytes.Index(data, []byte("UNIQUE-PAYLOAD"))
	if idx < 0 {
		t.Fatal("payload not found in archive")
	}
	data[idx] = 'X'

	snap, err := Decode(context.Background(), data)
	if snap != nil {
		t.Error("expected no snapshot on failure")
	}

	var decodeErr *project.ArchiveDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ArchiveDecodeError, got %T: %v", err, err)
	}
	if decodeErr.Path != "bad.txt" {
		t.Errorf("Path = %q, want bad.txt", decodeErr.Path)
	}
	if !errors.Is(err, zip.ErrChecksum) {
		t.Errorf("expected checksum error, got %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.zip")
	if err := os.WriteFile(path, buildZip(t, zip.Deflate, entry{"index.html", "hi"}), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	snap, err := DecodeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if !snap.Has("index.html") {
		t.Error("expected index.html in snapshot")
	}
}

func TestIngestor_Load(t *testing.T) {
	dl := &fakeDownloader{data: buildZip(t, zip.Deflate, entry{"index.html", "hi"})}
	ing := NewIngestor(dl, nil)

	snap, err := ing.Load(context.Background(), project.Project{ID: "p1"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("Len() = %d, want 1", snap.Len())
	}
	if len(dl.calls) != 1 || dl.calls[0] != "p1/project.zip" {
		t.Errorf("unexpected download calls %v", dl.calls)
	}
}

func TestIngestor_LoadFetchError(t *testing.T) {
	fetchErr := &project.ArchiveFetchError{ProjectID: "p1", File: "project.zip", Status: 500}
	ing := NewIngestor(&fakeDownloader{err: fetchErr}, nil)

	_, err := ing.Load(context.Background(), project.Project{ID: "p1"})

	var got *project.ArchiveFetchError
	if !errors.As(err, &got) {
		t.Fatalf("expected ArchiveFetchError, got %T: %v", err, err)
	}
}
