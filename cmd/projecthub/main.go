package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanhaley32/projecthub/internal/archive"
	"github.com/jeanhaley32/projecthub/internal/config"
	"github.com/jeanhaley32/projecthub/internal/logging"
	"github.com/jeanhaley32/projecthub/internal/platform"
	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/remote"
	"github.com/jeanhaley32/projecthub/internal/tree"
	"github.com/jeanhaley32/projecthub/internal/workspace"
)

var version = "0.1.0"

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfg    *config.Config
	client *remote.Client
	ws     *workspace.Workspace
	log    *zap.Logger

	archivePath string
}

// setupShutdownHandler registers signal handlers for graceful shutdown.
// Returns a function that should be deferred to remove the handler.
// cancel is ONLY called when a signal is received, not on normal exit.
func setupShutdownHandler(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(os.Stderr, "\nReceived signal: %v\n", sig)
			cancel()
		case <-done:
			return
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "projecthub",
		Short: "Browse, preview and export remote project archives",
		Long: "projecthub lists remote project archives, shows their files, renders a " +
			"sandboxed live preview of the web app they contain and exports them to disk.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (defaults to ./projecthub.yaml or ~/.projecthub/config.yaml)")
	rootCmd.PersistentFlags().String("api", "", "Project service base URL")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("archive", "", "Use a local zip archive instead of downloading a project")

	rootCmd.AddCommand(
		newListCmd(a),
		newTreeCmd(a),
		newCatCmd(a),
		newPreviewCmd(a),
		newExportCmd(a),
		newBrowseCmd(a),
		newVersionCmd(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	stopShutdownHandler := setupShutdownHandler(cancel)

	err := rootCmd.ExecuteContext(ctx)
	stopShutdownHandler()
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("invalid config flag: %w", err)
	}
	apiFlag, err := cmd.Flags().GetString("api")
	if err != nil {
		return fmt.Errorf("invalid api flag: %w", err)
	}
	levelFlag, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("invalid log-level flag: %w", err)
	}
	a.archivePath, err = cmd.Flags().GetString("archive")
	if err != nil {
		return fmt.Errorf("invalid archive flag: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(configPath, cwd, config.Overrides{BaseURL: apiFlag, LogLevel: levelFlag})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.log = logging.Named("cli")
	if cfg.Source != "" {
		a.log.Debug("loaded config", zap.String("path", cfg.Source))
	}

	a.client = remote.New(remote.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		AuthToken: cfg.API.Token,
		Logger:    logging.Named("remote"),
	})
	a.ws = workspace.New(archive.NewIngestor(a.client, logging.Named("archive")), logging.Named("workspace"))
	return nil
}

// resolveProject finds id in the listing. An id the listing does not know
// is still tried with the default archive name.
func (a *app) resolveProject(ctx context.Context, id string) (project.Project, error) {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return project.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	a.log.Info("project not in listing, using default archive name", zap.String("project", id))
	return project.Project{ID: id}, nil
}

// open makes a project the active session: the local archive when
// --archive is set, otherwise the remote project named by id.
func (a *app) open(ctx context.Context, id string) (*workspace.Session, error) {
	if a.archivePath != "" {
		snap, err := archive.DecodeFile(ctx, a.archivePath)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(a.archivePath)
		p := project.Project{ID: strings.TrimSuffix(base, filepath.Ext(base)), Files: []string{base}}
		return a.ws.Adopt(p, snap), nil
	}

	if id == "" {
		return nil, errors.New("a project id is required (or use --archive)")
	}
	p, err := a.resolveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.ws.Select(ctx, p)
}

// projectArg returns the project id among args, which is optional when
// --archive is set.
func (a *app) projectArg(args []string) string {
	if a.archivePath != "" || len(args) == 0 {
		return ""
	}
	return args[0]
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List remote projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), a)
		},
	}
}

func runList(ctx context.Context, a *app) error {
	projects, err := a.client.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%-32s %s\n", p.ID, p.ArchiveName())
	}
	return nil
}

func newTreeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [project-id]",
		Short: "Show the file tree of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, a, args)
		},
	}
	cmd.Flags().Bool("collapsed", false, "Show only top-level entries")
	return cmd
}

func runTree(cmd *cobra.Command, a *app, args []string) error {
	collapsed, err := cmd.Flags().GetBool("collapsed")
	if err != nil {
		return fmt.Errorf("invalid collapsed flag: %w", err)
	}

	if _, err := a.open(cmd.Context(), a.projectArg(args)); err != nil {
		return err
	}
	root, err := a.ws.Tree()
	if err != nil {
		return err
	}

	exp := tree.NewExpansion()
	if !collapsed {
		exp.ExpandAll(root)
	}
	for _, row := range tree.Render(root, exp) {
		fmt.Println(formatRow(row))
	}
	dirs, files := tree.Count(root)
	fmt.Printf("\n%d directories, %d files\n", dirs, files)
	return nil
}

// formatRow renders a tree row as an indented line; directories carry a
// trailing slash and an expansion marker.
func formatRow(row tree.Row) string {
	indent := strings.Repeat("  ", row.Depth)
	if row.Kind != tree.KindDir {
		return indent + "  " + row.Name
	}
	marker := "+"
	if row.Expanded {
		marker = "-"
	}
	return indent + marker + " " + row.Name + "/"
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat [project-id] <path>",
		Short: "Print a file from a project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd.Context(), a, args)
		},
	}
}

func runCat(ctx context.Context, a *app, args []string) error {
	path := args[len(args)-1]
	if _, err := a.open(ctx, a.projectArg(args[:len(args)-1])); err != nil {
		return err
	}
	f, err := a.ws.SelectFile(path)
	if err != nil {
		return err
	}
	fmt.Print(f.Content)
	if !strings.HasSuffix(f.Content, "\n") {
		fmt.Println()
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// No config or network needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("projecthub version %s\n", version)
			fmt.Printf("Platform: %s\n", platform.Detect())
		},
	}
}
