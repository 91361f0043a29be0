package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeanhaley32/projecthub/internal/materialize"
	"github.com/jeanhaley32/projecthub/internal/project"
	"github.com/jeanhaley32/projecthub/internal/workspace"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [project-id]",
		Short: "Write a project's files to a local directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, a, args)
		},
	}

	cmd.Flags().String("dest", "", "Destination directory (prompts on a terminal if not specified)")

	return cmd
}

func runExport(cmd *cobra.Command, a *app, args []string) error {
	dest, err := cmd.Flags().GetString("dest")
	if err != nil {
		return fmt.Errorf("invalid dest flag: %w", err)
	}
	if dest == "" {
		dest = a.cfg.Export.Dest
	}

	ctx := cmd.Context()
	session, err := a.open(ctx, a.projectArg(args))
	if err != nil {
		return err
	}
	return exportSession(ctx, a, session, dest)
}

func exportSession(ctx context.Context, a *app, session *workspace.Session, dest string) error {
	if dest != "" {
		abs, err := filepath.Abs(dest)
		if err != nil {
			return fmt.Errorf("invalid dest path: %w", err)
		}
		dest = abs
	}

	picker := materialize.NewPicker(dest, session.Project.DirName(), session.Snapshot.Len())
	name, err := a.ws.Export(ctx, picker, func(p materialize.Progress) {
		fmt.Printf("[%d/%d] %s\n", p.Seq, p.Total, p.Path)
	})

	var cancelled *project.UserCancelledError
	var unsupported *project.UnsupportedEnvironmentError
	switch {
	case errors.As(err, &cancelled):
		fmt.Println("Export cancelled.")
		return nil
	case errors.As(err, &unsupported):
		return fmt.Errorf("%w\nUse --dest to export without a terminal", err)
	case err != nil:
		return err
	}

	fmt.Printf("Exported %d files to %s\n", session.Snapshot.Len(), name)
	return nil
}
