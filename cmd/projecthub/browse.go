package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/sandbox"
	"github.com/jeanhaley32/projecthub/internal/terminal"
	"github.com/jeanhaley32/projecthub/internal/tree"
	"github.com/jeanhaley32/projecthub/internal/workspace"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [project-id]",
		Short: "Interactively browse a project's files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), a, args)
		},
	}
}

// browseAction is one parsed line of browse input.
type browseAction struct {
	kind  byte // 'n' row number, 'p' preview, 'e' export, 'r' reload, 'q' quit, 'h' help
	index int  // 0-based row index for 'n'
}

func parseBrowseInput(input string, rows int) (browseAction, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "p", "e", "r", "q", "h", "?":
		if input == "?" {
			input = "h"
		}
		return browseAction{kind: input[0]}, nil
	case "":
		return browseAction{}, errors.New("empty input")
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > rows {
		return browseAction{}, fmt.Errorf("enter a row number between 1 and %d, or h for help", rows)
	}
	return browseAction{kind: 'n', index: n - 1}, nil
}

const browseHelp = `  <n>  open a file or expand/collapse a directory
  p    serve a sandboxed preview
  e    export the project
  r    reload the project
  q    quit`

func runBrowse(ctx context.Context, a *app, args []string) error {
	if !terminal.IsTerminal() {
		return errors.New("browse needs an interactive terminal; use tree, cat, preview or export instead")
	}
	prompter := terminal.Default()

	id := a.projectArg(args)
	if id == "" && a.archivePath == "" {
		p, err := chooseProject(ctx, a, prompter)
		if err != nil {
			return err
		}
		id = p
	}

	session, err := a.open(ctx, id)
	if err != nil {
		return err
	}

	b := &browser{app: a, prompter: prompter, id: id}
	if err := b.reset(session); err != nil {
		return err
	}
	defer b.stopPreview()

	for {
		rows := tree.Render(b.root, b.exp)
		fmt.Printf("\n%s\n", session.Project.ID)
		for i, row := range rows {
			fmt.Printf("%4d %s\n", i+1, formatRow(row))
		}

		input, err := prompter.PromptString("Row, or p/e/r/q (h for help)", "")
		if err != nil {
			return nil
		}
		action, err := parseBrowseInput(input, len(rows))
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch action.kind {
		case 'q':
			return nil
		case 'h':
			fmt.Println(browseHelp)
		case 'n':
			b.open(rows[action.index].Path)
		case 'p':
			if err := b.preview(ctx); err != nil {
				fmt.Printf("Preview failed: %v\n", err)
			}
		case 'e':
			if err := exportSession(ctx, a, a.ws.Current(), a.cfg.Export.Dest); err != nil {
				fmt.Printf("Export failed: %v\n", err)
			}
		case 'r':
			next, err := a.open(ctx, b.id)
			if err != nil {
				fmt.Printf("Reload failed: %v\n", err)
				continue
			}
			session = next
			if err := b.reset(session); err != nil {
				return err
			}
			if b.server != nil {
				if doc, err := a.ws.Preview(); err == nil {
					b.server.Load(ctx, doc)
				}
			}
		}
	}
}

func chooseProject(ctx context.Context, a *app, prompter *terminal.Prompter) (string, error) {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return "", errors.New("no projects available")
	}
	options := make([]string, len(projects))
	for i, p := range projects {
		options[i] = fmt.Sprintf("%s (%s)", p.ID, p.ArchiveName())
	}
	choice, err := prompter.PromptChoice("Select a project:", options, 0)
	if err != nil {
		return "", fmt.Errorf("failed to get project choice: %w", err)
	}
	return projects[choice].ID, nil
}

// browser is the state of one interactive browse session.
type browser struct {
	app      *app
	prompter *terminal.Prompter
	id       string

	root *tree.Node
	exp  *tree.Expansion

	server     *sandbox.Server
	stopServer context.CancelFunc
}

func (b *browser) reset(s *workspace.Session) error {
	root, err := b.app.ws.Tree()
	if err != nil {
		return err
	}
	b.root = root
	b.exp = tree.NewExpansion()
	dirs, files := tree.Count(root)
	b.app.log.Debug("project loaded", zap.String("project", s.Project.ID), zap.Int("dirs", dirs), zap.Int("files", files))
	return nil
}

func (b *browser) open(path string) {
	selected, isFile := tree.Select(b.root, b.exp, path)
	if !isFile {
		return
	}
	f, err := b.app.ws.SelectFile(selected)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("\n--- %s ---\n%s\n--- end ---\n", f.Path, strings.TrimRight(f.Content, "\n"))
}

// preview starts the sandbox host on first use and reloads it afterwards.
func (b *browser) preview(ctx context.Context) error {
	doc, err := b.app.ws.Preview()
	if err != nil {
		return err
	}
	if b.server != nil {
		return b.server.Load(ctx, doc)
	}

	srv := sandbox.NewServer(b.app.ws.Preview, b.app.log.Named("sandbox"))
	srv.Load(ctx, doc)

	serveCtx, cancel := context.WithCancel(ctx)
	ready := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(serveCtx, b.app.cfg.Preview.Addr, func(addr net.Addr) { ready <- addr })
	}()

	select {
	case addr := <-ready:
		b.server = srv
		b.stopServer = cancel
		fmt.Printf("Preview running at http://%s/\n", addr)
		return nil
	case err := <-errCh:
		cancel()
		return err
	}
}

func (b *browser) stopPreview() {
	if b.stopServer != nil {
		b.stopServer()
	}
}
