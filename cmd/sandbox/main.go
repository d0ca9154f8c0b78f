// Command sandbox writes a fixture request list, a SQLite registry and a
// gwrecon config into a directory, then serves a stub CIP-API for them.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/gwrecon/internal/config"
	"github.com/okian/gwrecon/internal/sandbox"
	"github.com/okian/gwrecon/pkg/logger"
	"github.com/spf13/cobra"
)

// Default flag values.
const (
	defaultDir  = "sandbox"
	defaultRows = 20
	defaultAddr = "127.0.0.1:9080"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := sandbox.Config{}

	cmd := &cobra.Command{
		Use:           "sandbox",
		Short:         "Serve a stub CIP-API over generated fixtures",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			cfg.Logger = logger.Get()
			ctx := cmd.Context()

			fx, paths, err := sandbox.Prepare(ctx, cfg)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Addr, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s gwrecon -i %s -o report.csv\n",
				config.EnvConfigFile, paths.Config, paths.Input)
			return sandbox.Serve(ctx, ln, fx, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Dir, "dir", defaultDir, "directory for input.csv, registry.db and gwrecon.yaml")
	cmd.Flags().IntVar(&cfg.Rows, "rows", defaultRows, "number of requests to generate")
	cmd.Flags().StringVar(&cfg.Addr, "addr", defaultAddr, "listen address of the stub CIP-API")
	cmd.Flags().StringVar(&cfg.Token, "token", "", "bearer token the stub requires, if any")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "fixture seed")
	return cmd
}
