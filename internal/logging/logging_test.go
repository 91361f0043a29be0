package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesJSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	if err := Init(Config{Level: "info", Format: "json", OutputPath: out}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Named("archive").Info("decoded")
	L().Debug("hidden")
	if err := Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"msg":"decoded"`) {
		t.Errorf("log output missing info entry: %s", text)
	}
	if !strings.Contains(text, `"logger":"archive"`) {
		t.Errorf("log output missing logger name: %s", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("debug entry should be filtered at info level: %s", text)
	}
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	SetLevel("error")
	SetLevel("not-a-level")
	if got := globalLevel.Level().String(); got != "error" {
		t.Errorf("level = %s, want error", got)
	}
}
