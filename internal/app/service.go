// Package service runs one reconciliation: parse the request list, resolve
// each request to a participant, read the registry and join the three.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gwrecon/internal/adapters/csvfile"
	"github.com/okian/gwrecon/internal/domain/model"
	"github.com/okian/gwrecon/internal/domain/reconcile"
	"github.com/okian/gwrecon/pkg/logger"
	"github.com/okian/gwrecon/pkg/metrics"
)

// Resolver maps a request number to a participant id; "" means none.
type Resolver interface {
	Resolve(ctx context.Context, requestNumber string) (string, error)
}

// Registry returns the registry records for the given participant ids.
type Registry interface {
	Participants(ctx context.Context, ids []string) ([]model.RegistryRecord, error)
}

// Service runs reconciliations against one resolver and one registry.
type Service struct {
	resolver     Resolver
	registry     Registry
	registryName string
	logger       logger.Logger
	metrics      *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResolver sets the participant resolver.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithRegistry sets the registry source.
func WithRegistry(r Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithRegistryName sets the name used in missing participant notices.
func WithRegistryName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.registryName = name
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service. Resolver and registry are required before Run.
func New(opts ...Option) *Service {
	s := &Service{
		registryName: reconcile.DefaultRegistryName,
		logger:       logger.NewNop(),
		metrics:      metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reconciles the request list read from in. Any collaborator failure
// aborts the run; a lookup that finds nothing does not.
func (s *Service) Run(ctx context.Context, in io.Reader) (model.Report, error) {
	requests, err := csvfile.ReadRequests(in)
	if err != nil {
		return model.Report{}, s.fail(ctx, fmt.Errorf("read requests: %w", err))
	}
	return s.Reconcile(ctx, requests)
}

// RunFile reconciles inputPath and writes the report to outputPath. The
// input is fully parsed before any collaborator is called, and nothing is
// written when the run fails.
func (s *Service) RunFile(ctx context.Context, inputPath, outputPath string) (model.Report, error) {
	requests, err := csvfile.ReadFile(inputPath)
	if err != nil {
		return model.Report{}, s.fail(ctx, fmt.Errorf("read requests: %w", err))
	}
	report, err := s.Reconcile(ctx, requests)
	if err != nil {
		return model.Report{}, err
	}
	if err := s.Write(ctx, outputPath, report); err != nil {
		return model.Report{}, err
	}
	return report, nil
}

// Write writes report to path. A failed write counts as a failed run.
func (s *Service) Write(ctx context.Context, path string, report model.Report) error {
	if err := csvfile.WriteFile(path, report); err != nil {
		return s.fail(ctx, fmt.Errorf("write report: %w", err))
	}
	return nil
}

// Reconcile resolves already parsed requests, reads the registry and joins
// the three.
func (s *Service) Reconcile(ctx context.Context, requests []model.RequestRecord) (report model.Report, err error) {
	if s.resolver == nil || s.registry == nil {
		return model.Report{}, ErrNotConfigured
	}

	start := time.Now()
	log := s.logger.With(logger.String("run_id", uuid.NewString()))
	defer func() {
		s.metrics.RecordRunDuration(time.Since(start).Seconds())
		if err != nil {
			s.metrics.RecordRunFailure()
			log.Error(ctx, "reconciliation failed", logger.Error(err))
		}
	}()

	s.metrics.RecordRequestsParsed(len(requests))
	log.Info(ctx, "requests parsed", logger.Int("requests", len(requests)))

	links, err := s.resolve(ctx, requests)
	if err != nil {
		return model.Report{}, err
	}

	ids := reconcile.ParticipantIDs(links)
	records, err := s.registry.Participants(ctx, ids)
	if err != nil {
		return model.Report{}, fmt.Errorf("read registry: %w", err)
	}

	report, err = reconcile.Reconcile(requests, links, records, reconcile.WithRegistryName(s.registryName))
	if err != nil {
		return model.Report{}, err
	}

	s.metrics.RecordReport(len(report.Rows), len(report.Missing))
	for _, id := range report.Missing {
		log.Warn(ctx, "participant not in registry",
			logger.String("participant_id", id),
			logger.String("registry", s.registryName),
		)
	}
	log.Info(ctx, "reconciliation complete",
		logger.Int("participants", len(ids)),
		logger.Int("registry_records", len(records)),
		logger.Int("rows", len(report.Rows)),
		logger.Int("missing", len(report.Missing)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// fail records a run failure outside Reconcile and returns err.
func (s *Service) fail(ctx context.Context, err error) error {
	s.metrics.RecordRunFailure()
	s.logger.Error(ctx, "reconciliation failed", logger.Error(err))
	return err
}

// resolve looks up every request in input order, one call at a time.
func (s *Service) resolve(ctx context.Context, requests []model.RequestRecord) ([]model.ParticipantLink, error) {
	links := make([]model.ParticipantLink, len(requests))
	resolved := 0
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := s.resolver.Resolve(ctx, req.RequestNumber)
		if err != nil {
			return nil, fmt.Errorf("resolve %s (row %d): %w", req.RequestID, req.Row, err)
		}
		links[i] = model.ParticipantLink{RequestNumber: req.RequestNumber, ParticipantID: id}
		if id != "" {
			resolved++
		}
	}
	s.logger.Debug(ctx, "requests resolved",
		logger.Int("resolved", resolved),
		logger.Int("unresolved", len(requests)-resolved),
	)
	return links, nil
}
