package sandbox

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/logging"
)

// Headless renders documents in a headless Chrome tab.
type Headless struct {
	// ControlURL is the DevTools URL of an existing browser. Empty
	// launches a local headless Chrome. The browser must reach the
	// loopback interface, where documents are served.
	ControlURL string
	log        *zap.Logger

	mu       sync.Mutex
	rendered string
}

// NewHeadless creates a headless host.
func NewHeadless(controlURL string, log *zap.Logger) *Headless {
	if log == nil {
		log = logging.Named("headless")
	}
	return &Headless{ControlURL: controlURL, log: log}
}

// BrowserAvailable reports whether a local Chrome can be launched.
func BrowserAvailable() bool {
	_, ok := launcher.LookPath()
	return ok
}

// Load renders doc and keeps the resulting DOM.
func (h *Headless) Load(ctx context.Context, doc string) error {
	html, err := h.Render(ctx, doc)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.rendered = html
	h.mu.Unlock()
	return nil
}

// Rendered returns the DOM produced by the last Load.
func (h *Headless) Rendered() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rendered
}

// Render serves doc from a loopback Server, so the sandbox policy header
// applies, waits for the load event and returns the resulting outer HTML.
func (h *Headless) Render(ctx context.Context, doc string) (string, error) {
	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	url, err := h.serve(serveCtx, doc)
	if err != nil {
		return "", err
	}

	controlURL := h.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return "", fmt.Errorf("headless: launch chrome: %w", err)
		}
		defer l.Cleanup()
		defer l.Kill()
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("headless: connect: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("headless: open %s: %w", url, err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		h.log.Warn("headless: wait load", zap.Error(err))
	}

	res, err := page.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("headless: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// serve starts a Server for doc on an ephemeral loopback port and returns
// its URL. The server stops when ctx is cancelled.
func (h *Headless) serve(ctx context.Context, doc string) (string, error) {
	srv := NewServer(nil, h.log)
	srv.Load(ctx, doc)

	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, "127.0.0.1:0", func(addr net.Addr) { ready <- addr })
	}()

	select {
	case addr := <-ready:
		return fmt.Sprintf("http://%s/", addr), nil
	case err := <-errCh:
		return "", fmt.Errorf("headless: start sandbox host: %w", err)
	}
}
