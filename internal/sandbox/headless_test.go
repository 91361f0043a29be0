package sandbox

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/constants"
)

func TestHeadless_ServeAppliesSandboxPolicy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHeadless("", zap.NewNop())
	url, err := h.serve(ctx, "<p>doc</p>")
	if err != nil {
		t.Fatalf("serve() error = %v", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Security-Policy"); got != constants.SandboxPolicy {
		t.Errorf("CSP = %q, want %q", got, constants.SandboxPolicy)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<p>doc</p>" {
		t.Errorf("body = %q", body)
	}
}

func TestHeadless_RenderRunsInOpaqueOrigin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping headless browser test in short mode")
	}
	if !BrowserAvailable() {
		t.Skip("no local Chrome found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	h := NewHeadless("", zap.NewNop())
	doc := `<html><body><div id="out"></div>` +
		`<script>document.getElementById("out").textContent = "origin:" + window.origin</script>` +
		`</body></html>`
	if err := h.Load(ctx, doc); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Under "sandbox" without allow-same-origin, scripts run but the
	// document has the opaque origin "null".
	if !strings.Contains(h.Rendered(), ">origin:null<") {
		t.Errorf("Rendered() = %q, want script output with opaque origin", h.Rendered())
	}
}
