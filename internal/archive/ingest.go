// Package archive turns zip archives into project snapshots.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/metrics"
	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/remote"
)

// Ingestor downloads project archives and decodes them into snapshots.
type Ingestor struct {
	downloader remote.Downloader
	log        *zap.Logger
}

// NewIngestor creates an Ingestor backed by downloader.
func NewIngestor(downloader remote.Downloader, log *zap.Logger) *Ingestor {
	if log == nil {
		log = logging.Named("archive")
	}
	return &Ingestor{downloader: downloader, log: log}
}

// Load downloads the project's archive and decodes it.
func (i *Ingestor) Load(ctx context.Context, p project.Project) (*project.Snapshot, error) {
	start := time.Now()
	file := p.ArchiveName()

	data, err := i.downloader.Download(ctx, p.ID, file)
	if err != nil {
		metrics.RecordIngest("fetch_error", time.Since(start))
		return nil, err
	}

	snap, err := Decode(ctx, data)
	if err != nil {
		metrics.RecordIngest("decode_error", time.Since(start))
		return nil, err
	}

	metrics.RecordIngest("ok", time.Since(start))
	i.log.Info("ingested project archive",
		zap.String("project", p.ID),
		zap.String("file", file),
		zap.Int("files", snap.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// DecodeFile reads a zip archive from the local filesystem.
func DecodeFile(ctx context.Context, path string) (*project.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	return Decode(ctx, data)
}

// decoded is the result slot for one archive entry.
type decoded struct {
	file project.VirtualFile
	err  error
}

// Decode decompresses a zip archive and decodes every file entry as
// UTF-8 text. Entries are decoded concurrently; the first failure fails
// the whole call and no snapshot is returned. Paths are kept exactly as
// encoded in the archive and snapshot order follows archive order.
func Decode(ctx context.Context, data []byte) (*project.Snapshot, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &project.ArchiveDecodeError{Err: err}
	}

	entries := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if isDirectory(f) {
			continue
		}
		if f.Name == "" {
			return nil, &project.ArchiveDecodeError{Err: fmt.Errorf("entry with empty name")}
		}
		entries = append(entries, f)
	}

	results := make([]decoded, len(entries))
	var wg sync.WaitGroup
	for idx, f := range entries {
		wg.Add(1)
		go func(idx int, f *zip.File) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[idx].err = err
				return
			}
			content, err := decodeEntry(f)
			if err != nil {
				results[idx].err = &project.ArchiveDecodeError{Path: f.Name, Err: err}
				return
			}
			results[idx].file = project.VirtualFile{Path: f.Name, Content: content}
		}(idx, f)
	}
	wg.Wait()

	files := make([]project.VirtualFile, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		files = append(files, r.file)
	}

	snap, err := project.NewSnapshot(files...)
	if err != nil {
		return nil, &project.ArchiveDecodeError{Err: err}
	}
	metrics.RecordEntriesDecoded(len(files))
	return snap, nil
}

// isDirectory reports whether an entry is a directory marker.
func isDirectory(f *zip.File) bool {
	return f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")
}

// decodeEntry reads one entry as text. Invalid UTF-8 sequences become
// U+FFFD; a checksum mismatch surfaces as an error from the reader.
func decodeEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(transform.NewReader(rc, unicode.UTF8.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
