// Package embedded carries the static markup injected into preview
// documents.
package embedded

import (
	_ "embed"
)

// PreviewShim is inserted after the opening head tag of every preview. It
// declares the import map for well-known modules and registers the
// "tsx-react" transpilation preset with the in-browser Babel runtime.
//
//go:embed preview/shim.html
var PreviewShim string

// MissingRootDocument is served when a project has no index.html.
//
//go:embed preview/missing.html
var MissingRootDocument string

// TranspilePreset is the Babel preset name registered by PreviewShim.
const TranspilePreset = "tsx-react"

// ImportMap lists the module specifiers PreviewShim resolves. Kept in sync
// with preview/shim.html; printed by preview --explain.
var ImportMap = map[string]string{
	"react":        "https://esm.sh/react@18.3.1",
	"react/":       "https://esm.sh/react@18.3.1/",
	"react-dom":    "https://esm.sh/react-dom@18.3.1",
	"react-dom/":   "https://esm.sh/react-dom@18.3.1/",
	"lucide-react": "https://esm.sh/lucide-react@0.460.0?external=react",
}
