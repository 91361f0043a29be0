package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/constants"
	"github.com/jeanhaley32/projecthub/internal/embedded"
	"github.com/jeanhaley32/projecthub/internal/platform"
	"github.com/jeanhaley32/projecthub/internal/preview"
	"github.com/jeanhaley32/projecthub/internal/sandbox"
)

func newPreviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [project-id]",
		Short: "Render a sandboxed live preview of a project",
		Long: "Synthesizes a self-contained HTML document from the project's index.html and " +
			"entry module. By default the document is written to stdout; --serve hosts it " +
			"under a Content-Security-Policy sandbox and --headless renders it in headless Chrome.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, a, args)
		},
	}

	cmd.Flags().StringP("out", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().Bool("serve", false, "Serve the preview in a sandboxed HTTP host")
	cmd.Flags().String("addr", "", "Listen address for --serve (default from config)")
	cmd.Flags().Bool("open", false, "Open the served preview in the default browser")
	cmd.Flags().Bool("headless", false, "Render in headless Chrome and print the resulting DOM")
	cmd.Flags().Bool("explain", false, "Show which root document and entry module were picked")

	return cmd
}

func runPreview(cmd *cobra.Command, a *app, args []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("invalid out flag: %w", err)
	}
	serve, err := cmd.Flags().GetBool("serve")
	if err != nil {
		return fmt.Errorf("invalid serve flag: %w", err)
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("invalid addr flag: %w", err)
	}
	openBrowser, err := cmd.Flags().GetBool("open")
	if err != nil {
		return fmt.Errorf("invalid open flag: %w", err)
	}
	headless, err := cmd.Flags().GetBool("headless")
	if err != nil {
		return fmt.Errorf("invalid headless flag: %w", err)
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return fmt.Errorf("invalid explain flag: %w", err)
	}
	if serve && headless {
		return errors.New("--serve and --headless are mutually exclusive")
	}

	ctx := cmd.Context()
	session, err := a.open(ctx, a.projectArg(args))
	if err != nil {
		return err
	}

	if explain {
		root, ok := preview.Root(session.Snapshot)
		if !ok {
			root = "(none, diagnostic document)"
		}
		entry, ok := preview.Entry(session.Snapshot)
		if !ok {
			entry = "(none)"
		}
		fmt.Fprintf(os.Stderr, "Root document: %s\n", root)
		fmt.Fprintf(os.Stderr, "Entry module:  %s\n", entry)
		fmt.Fprintln(os.Stderr, "Import map:")
		for _, line := range importMapLines() {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
	}

	doc, err := a.ws.Preview()
	if err != nil {
		return err
	}

	switch {
	case serve:
		if addr == "" {
			addr = a.cfg.Preview.Addr
		}
		return servePreview(ctx, a, doc, addr, openBrowser)
	case headless:
		h := sandbox.NewHeadless(a.cfg.Preview.ControlURL, a.log.Named("headless"))
		if err := h.Load(ctx, doc); err != nil {
			return err
		}
		doc = h.Rendered()
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(doc), constants.FilePermissions); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Preview written to %s\n", outPath)
		return nil
	}
	fmt.Print(doc)
	return nil
}

// importMapLines lists the shim's module specifiers in name order.
func importMapLines() []string {
	specifiers := make([]string, 0, len(embedded.ImportMap))
	for specifier := range embedded.ImportMap {
		specifiers = append(specifiers, specifier)
	}
	sort.Strings(specifiers)

	lines := make([]string, len(specifiers))
	for i, specifier := range specifiers {
		lines[i] = fmt.Sprintf("%-14s %s", specifier, embedded.ImportMap[specifier])
	}
	return lines
}

// servePreview hosts doc until ctx is cancelled. POST /reload synthesizes
// the document again from the active session.
func servePreview(ctx context.Context, a *app, doc, addr string, openBrowser bool) error {
	srv := sandbox.NewServer(a.ws.Preview, a.log.Named("sandbox"))
	if err := srv.Load(ctx, doc); err != nil {
		return err
	}

	return srv.Serve(ctx, addr, func(bound net.Addr) {
		url := fmt.Sprintf("http://%s/", bound)
		fmt.Printf("Preview running at %s (Ctrl+C to stop)\n", url)
		if openBrowser {
			if err := platform.OpenURL(url); err != nil {
				a.log.Warn("could not open browser", zap.Error(err))
			}
		}
	})
}
