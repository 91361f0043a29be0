package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeanhaley32/projecthub/internal/constants"
)

func TestPathResolver_GetGlobalConfigPath(t *testing.T) {
	resolver, err := NewPathResolver()
	if err != nil {
		t.Fatalf("NewPathResolver() error = %v", err)
	}

	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, constants.ConfigDir, constants.ConfigFileName)

	if got := resolver.GetGlobalConfigPath(); got != expected {
		t.Errorf("GetGlobalConfigPath() = %v, want %v", got, expected)
	}
}

func TestPathResolver_GetLocalConfigPath(t *testing.T) {
	resolver, err := NewPathResolver()
	if err != nil {
		t.Fatalf("NewPathResolver() error = %v", err)
	}

	cwd := "/some/project/dir"
	expected := filepath.Join(cwd, constants.LocalConfigFileName)

	if got := resolver.GetLocalConfigPath(cwd); got != expected {
		t.Errorf("GetLocalConfigPath(%v) = %v, want %v", cwd, got, expected)
	}
}

func TestPathResolver_ResolveConfigPath_ExplicitPath(t *testing.T) {
	resolver, err := NewPathResolver()
	if err != nil {
		t.Fatalf("NewPathResolver() error = %v", err)
	}

	explicitPath := "/custom/path/projecthub.yaml"
	configPath, exists := resolver.ResolveConfigPath(explicitPath, "/some/project/dir")
	if configPath != explicitPath {
		t.Errorf("ResolveConfigPath() configPath = %v, want %v", configPath, explicitPath)
	}
	if exists {
		t.Errorf("ResolveConfigPath() exists = true for non-existent path")
	}
}

func TestPathResolver_ResolveConfigPath_LocalConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpDir := t.TempDir()

	localPath := filepath.Join(tmpDir, constants.LocalConfigFileName)
	if err := os.WriteFile(localPath, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("Failed to create local config: %v", err)
	}

	resolver, err := NewPathResolver()
	if err != nil {
		t.Fatalf("NewPathResolver() error = %v", err)
	}

	configPath, exists := resolver.ResolveConfigPath("", tmpDir)
	if configPath != localPath {
		t.Errorf("ResolveConfigPath() configPath = %v, want %v", configPath, localPath)
	}
	if !exists {
		t.Errorf("ResolveConfigPath() exists = false for existing local config")
	}
}

func TestPathResolver_ResolveConfigPath_FallsBackToGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	resolver, err := NewPathResolver()
	if err != nil {
		t.Fatalf("NewPathResolver() error = %v", err)
	}

	configPath, exists := resolver.ResolveConfigPath("", t.TempDir())
	expected := filepath.Join(home, constants.ConfigDir, constants.ConfigFileName)
	if configPath != expected {
		t.Errorf("ResolveConfigPath() configPath = %v, want %v", configPath, expected)
	}
	if exists {
		t.Errorf("ResolveConfigPath() exists = true with empty home")
	}
}

func TestConfigNotFoundError(t *testing.T) {
	err := &ConfigNotFoundError{Path: "/tmp/x.yaml"}
	if err.Error() != "config file not found: /tmp/x.yaml" {
		t.Errorf("Error() = %q", err.Error())
	}
}
