package project

import (
	"regexp"
	"strings"
)

// Pre-compiled regexes for sanitization (compiled once at package init)
var (
	separatorRegex   = regexp.MustCompile(`[/:\\@\s]+`)
	unsafeCharRegex  = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	multiHyphenRegex = regexp.MustCompile(`-+`)
)

// Maximum length for generated directory names
const maxNameLength = 100

// DirName returns a filesystem-safe directory name for the project,
// used as the default export folder.
func (p Project) DirName() string {
	archive := strings.TrimSuffix(p.ArchiveName(), ".zip")
	if archive == "project" || archive == "" {
		return SafeName(p.ID)
	}
	return SafeName(p.ID + "-" + archive)
}

// SafeName converts a string to a filesystem-safe name.
// Examples:
//   - "abc 123/demo" -> "abc-123-demo"
//   - "../../etc" -> "..-..-etc"
func SafeName(name string) string {
	name = separatorRegex.ReplaceAllString(name, "-")
	name = unsafeCharRegex.ReplaceAllString(name, "")
	name = multiHyphenRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	// Dot-only names would address the parent or current directory.
	if strings.Trim(name, ".") == "" {
		name = ""
	}

	if len(name) > maxNameLength {
		name = name[:maxNameLength]
		name = strings.TrimRight(name, "-")
	}

	if name == "" {
		name = "unnamed-project"
	}

	return name
}
