// Package preview synthesizes a single self-contained HTML document from
// a project snapshot for sandboxed execution.
package preview

import (
	"regexp"
	"strings"

	"github.com/jeanhaley32/projecthub/internal/embedded"
	"github.com/jeanhaley32/projecthub/internal/metrics"
	"github.com/jeanhaley32/projecthub/internal/project"
)

// RootDocument is the preferred path of the root document.
const RootDocument = "index.html"

// Entry bases are tried in order, each with every source extension.
var (
	entryBases      = []string{"src/main", "src/index", "main", "index"}
	entryExtensions = []string{".tsx", ".jsx", ".ts", ".js"}
)

var (
	headOpenRegex  = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
	htmlOpenRegex  = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
	bodyCloseRegex = regexp.MustCompile(`(?i)</body\s*>`)
)

// EntryCandidates returns the entry script paths in priority order.
func EntryCandidates() []string {
	out := make([]string, 0, len(entryBases)*len(entryExtensions))
	for _, base := range entryBases {
		for _, ext := range entryExtensions {
			out = append(out, base+ext)
		}
	}
	return out
}

// Root locates the root document: index.html, else the first nested
// path ending in /index.html in snapshot order.
func Root(snap *project.Snapshot) (string, bool) {
	if snap.Has(RootDocument) {
		return RootDocument, true
	}
	for p := range snap.All() {
		if strings.HasSuffix(p, "/"+RootDocument) {
			return p, true
		}
	}
	return "", false
}

// Entry locates the entry script, the first existing EntryCandidates path.
func Entry(snap *project.Snapshot) (string, bool) {
	for _, candidate := range EntryCandidates() {
		if snap.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Synthesize returns the preview document for snap. It is a pure
// function of the snapshot: equal snapshots yield identical output. A
// snapshot without a root document yields embedded.MissingRootDocument.
func Synthesize(snap *project.Snapshot) string {
	rootPath, ok := Root(snap)
	if !ok {
		metrics.RecordSynthesis("missing_root")
		return embedded.MissingRootDocument
	}
	root, _ := snap.Get(rootPath)

	doc := InjectShim(root.Content)

	entryPath, ok := Entry(snap)
	if !ok {
		metrics.RecordSynthesis("no_entry")
		return doc
	}
	entry, _ := snap.Get(entryPath)

	metrics.RecordSynthesis("ok")
	return InjectEntry(doc, entry.Content)
}

// InjectShim inserts the dependency shim right after the first opening
// head tag, else after the first opening html tag, else at the start.
func InjectShim(doc string) string {
	for _, anchor := range []*regexp.Regexp{headOpenRegex, htmlOpenRegex} {
		if loc := anchor.FindStringIndex(doc); loc != nil {
			return doc[:loc[1]] + embedded.PreviewShim + doc[loc[1]:]
		}
	}
	return embedded.PreviewShim + doc
}

// EntryScript wraps source in a script tag handled by the transpiler.
// The source is inserted literally.
func EntryScript(source string) string {
	return `<script type="text/babel" data-type="module" data-presets="` +
		embedded.TranspilePreset + `">` + "\n" + source + "\n</script>\n"
}

// InjectEntry inserts the entry script right before the last closing
// body tag, else appends it.
func InjectEntry(doc, source string) string {
	script := EntryScript(source)
	locs := bodyCloseRegex.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return doc + script
	}
	at := locs[len(locs)-1][0]
	return doc[:at] + script + doc[at:]
}
