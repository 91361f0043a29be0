package constants

import (
	"os"
	"time"
)

// Remote project service constants
const (
	// DefaultAPIBase is the default base URL of the project listing service.
	DefaultAPIBase = "https://lineable-maricela-primly.ngrok-free.dev"

	// ProjectsPath is the listing endpoint, relative to the API base.
	ProjectsPath = "/projects/"

	// DefaultArchiveName is used when a project lists no archive files.
	DefaultArchiveName = "project.zip"

	// SkipBrowserWarningHeader disables the tunnel interstitial page.
	SkipBrowserWarningHeader = "ngrok-skip-browser-warning"

	// DefaultRequestTimeout bounds a single listing or download request.
	DefaultRequestTimeout = 60 * time.Second
)

// Configuration file constants
const (
	// ConfigDir is the per-user configuration directory under $HOME.
	ConfigDir = ".projecthub"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// LocalConfigFileName is looked up in the current directory.
	LocalConfigFileName = "projecthub.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PROJECTHUB_"
)

// Preview server constants
const (
	// DefaultPreviewAddr is the listen address of the sandbox host.
	DefaultPreviewAddr = "127.0.0.1:5173"

	// SandboxPolicy is the Content-Security-Policy applied to previews.
	// Scripts run in an opaque origin with no access to forms, popups,
	// top-level navigation or same-origin storage.
	SandboxPolicy = "sandbox allow-scripts allow-modals"

	// PreviewShutdownTimeout bounds graceful shutdown of the sandbox host.
	PreviewShutdownTimeout = 5 * time.Second
)

// File permissions
const (
	// DirPermissions is the default permission mode for exported directories.
	DirPermissions os.FileMode = 0755

	// FilePermissions is the default permission mode for exported files.
	FilePermissions os.FileMode = 0644
)
