package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eringen/blogposts"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "blogposts",
		Short:         "blogposts - an in-memory blog post REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCmd(&configPath), newVersionCmd())
	return cmd
}

type serveFlags struct {
	addr     string
	store    string
	logLevel string
	skipSeed bool
}

func newServeCmd(configPath *string) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := blogposts.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = f.addr
			}
			if flags.Changed("store") {
				cfg.Store = f.store
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = f.logLevel
			}
			if flags.Changed("skip-seed") {
				cfg.SkipSeed = f.skipSeed
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&f.store, "store", blogposts.DriverMemory, "store backend: memory or sqlite")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error, off")
	cmd.Flags().BoolVar(&f.skipSeed, "skip-seed", false, "start with no sample posts")
	return cmd
}

func serve(parent context.Context, cfg blogposts.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := blogposts.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	color.New(color.FgGreen).Fprintf(os.Stderr, "blogposts %s listening on %s (store=%s)\n",
		version, app.Config.Addr, app.Config.Store)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the blogposts version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogposts %s (commit=%s)\n", version, commit)
		},
	}
}
