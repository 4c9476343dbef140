package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bashhack/autocommit/internal/config"
)

// newRootCommand builds the autocommit command tree. newApp lets tests
// replace the application wiring.
func newRootCommand(versionInfo config.VersionInfo, newApp func(AppOptions) *App) *cobra.Command {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	root := &cobra.Command{
		Use:   "autocommit",
		Short: "Commit file changes automatically after a quiet period",
		Long: "autocommit watches a git working tree and, once files stop changing for the\n" +
			"quiet period, stages everything and commits it with a one-line summary of\n" +
			"the added, modified and deleted paths.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Load(cmd.Flags()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			app := newApp(AppOptions{
				Config: cfg,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})

			err := app.Run(ctx)
			// Signal shutdown is the normal way to stop
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cfg.BindFlags(root.Flags())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cfg.VersionInfo.String())
		},
	})

	return root
}
