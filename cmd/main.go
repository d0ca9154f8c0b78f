package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/gwrecon/internal/adapters/cipapi"
	"github.com/okian/gwrecon/internal/adapters/csvfile"
	"github.com/okian/gwrecon/internal/adapters/registry"
	app "github.com/okian/gwrecon/internal/app"
	"github.com/okian/gwrecon/internal/config"
	"github.com/okian/gwrecon/pkg/logger"
	"github.com/okian/gwrecon/pkg/metrics"
	"github.com/spf13/cobra"
)

// Flag names.
const (
	flagInput  = "input_file"
	flagOutput = "output_file"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "gwrecon -i <requests.csv> -o <report.csv>",
		Short: "Reconcile interpretation requests with GeneWorks participants",
		Long: "Reads a CSV of interpretation request ids, resolves each to a participant through\n" +
			"CIP-API, reads the registry and writes a joined report. Participants the registry\n" +
			"does not know are listed after the table.\n\n" +
			"Collaborators are configured through " + config.EnvConfigFile + " (YAML) and " +
			config.EnvPrefix + "* environment variables.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flags parsed; from here on failures are not usage errors.
			cmd.SilenceUsage = true
			return run(cmd.Context(), logOut, input, output)
		},
	}

	cmd.Flags().StringVarP(&input, flagInput, "i", "", "input CSV with request_id and family_id columns")
	cmd.Flags().StringVarP(&output, flagOutput, "o", "", "output CSV report, overwritten if present")
	_ = cmd.MarkFlagRequired(flagInput)
	_ = cmd.MarkFlagRequired(flagOutput)
	return cmd
}

func run(ctx context.Context, logOut io.Writer, input, output string) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithWriter(logOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
				log.Warn(ctx, "failed to write metrics", logger.String("path", cfg.MetricsTextfile), logger.Error(err))
			}
		}()
	}

	// Parse the whole input before touching any collaborator so that a
	// malformed row is reported even when they are down.
	requests, err := csvfile.ReadFile(input)
	if err != nil {
		metrics.RecordRunFailure()
		return fmt.Errorf("read requests: %w", err)
	}

	regCfg := cfg.Registry()
	log.Info(ctx, "connecting to registry",
		logger.String("registry", cfg.RegistryName),
		logger.String("driver", regCfg.Driver),
		logger.String("dsn", regCfg.Redacted()),
	)
	store, err := registry.Open(ctx, regCfg, registry.WithLogger(log.Named("registry")))
	if err != nil {
		metrics.RecordRunFailure()
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "failed to close registry", logger.Error(err))
		}
	}()

	resolver := cipapi.New(cfg.CIPAPIBaseURL,
		cipapi.WithToken(cfg.CIPAPIToken),
		cipapi.WithTimeout(cfg.CIPAPITimeout()),
		cipapi.WithLogger(log.Named("cipapi")),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithResolver(resolver),
		app.WithRegistry(store),
		app.WithRegistryName(cfg.RegistryName),
	)
	report, err := svc.Reconcile(ctx, requests)
	if err != nil {
		return err
	}
	if err := svc.Write(ctx, output, report); err != nil {
		return err
	}

	log.Info(ctx, "report written",
		logger.String("path", output),
		logger.Int("rows", len(report.Rows)),
		logger.Int("missing", len(report.Missing)),
	)
	return nil
}
