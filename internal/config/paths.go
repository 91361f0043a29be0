package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeanhaley32/projecthub/internal/constants"
)

// PathResolver handles config file resolution with priority rules.
type PathResolver struct {
	homeDir string
}

// NewPathResolver creates a new PathResolver.
func NewPathResolver() (*PathResolver, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &PathResolver{homeDir: homeDir}, nil
}

// GetGlobalConfigDir returns the per-user config directory.
// Returns: ~/.projecthub
func (p *PathResolver) GetGlobalConfigDir() string {
	return filepath.Join(p.homeDir, constants.ConfigDir)
}

// GetGlobalConfigPath returns the per-user config file path.
// Returns: ~/.projecthub/config.yaml
func (p *PathResolver) GetGlobalConfigPath() string {
	return filepath.Join(p.GetGlobalConfigDir(), constants.ConfigFileName)
}

// GetLocalConfigPath returns the local config path for a given directory.
// Returns: {dir}/projecthub.yaml
func (p *PathResolver) GetLocalConfigPath(dir string) string {
	return filepath.Join(dir, constants.LocalConfigFileName)
}

// ResolveConfigPath applies the config resolution priority rules.
// Priority:
// 1. Explicit path (if provided) - use exactly what user specifies
// 2. Local config ({cwd}/projecthub.yaml) - if exists, use it
// 3. Global config (~/.projecthub/config.yaml)
//
// Returns the resolved path and whether it exists.
func (p *PathResolver) ResolveConfigPath(explicitPath, cwd string) (configPath string, exists bool) {
	if explicitPath != "" {
		_, err := os.Stat(explicitPath)
		return explicitPath, err == nil
	}

	localPath := p.GetLocalConfigPath(cwd)
	if _, err := os.Stat(localPath); err == nil {
		return localPath, true
	}

	globalPath := p.GetGlobalConfigPath()
	_, err := os.Stat(globalPath)
	return globalPath, err == nil
}

// ConfigNotFoundError is returned when an explicitly requested config file
// does not exist.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}
