package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okian/gwrecon/internal/domain/dedupe"
	"github.com/okian/gwrecon/internal/domain/model"
	"github.com/okian/gwrecon/pkg/logger"
	"github.com/okian/gwrecon/pkg/metrics"
)

// Result columns, matched case-insensitively.
const (
	ColTrustID       = "PatientTrustID"
	ColLastName      = "LastName"
	ColFirstName     = "FirstName"
	ColDateOfBirth   = "DoB"
	ColParticipantID = "Participant Id"
	ColNHSNumber     = "NHSNo"
	ColGender        = "Gender"
)

// maxParams keeps IN lists under the SQL Server limit of 2100 parameters.
const maxParams = 1000

var participantColumns = []string{ColTrustID, ColLastName, ColFirstName, ColDateOfBirth, ColParticipantID}

var demographicColumns = []string{ColTrustID, ColNHSNumber, ColGender}

// Store is an open registry connection.
type Store struct {
	db      *sql.DB
	cfg     Config
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Open connects to the registry and verifies the connection. The pool is
// capped at a single connection; callers must Close the store.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	dsn, err := cfg.ConnString()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.ParticipantsQuery) == "" {
		return nil, fmt.Errorf("%w: participants query is required", ErrConfig)
	}
	if cfg.Demographics && strings.Count(cfg.DemographicsQuery, "%s") != 1 {
		return nil, fmt.Errorf("%w: demographics query must contain exactly one %%s", ErrConfig)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, cfg.Driver, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrUnavailable, cfg.Driver, err)
	}

	s := &Store{
		db:      db,
		cfg:     cfg,
		logger:  logger.NewNop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Participants reads the whole participant set and returns the rows whose
// participant id is in ids, in registry order. With demographics enabled the
// matched rows are enriched by trust id; rows without demographics are kept.
func (s *Store) Participants(ctx context.Context, ids []string) ([]model.RegistryRecord, error) {
	want := dedupe.FromValues(ids)

	all, err := s.readParticipants(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]model.RegistryRecord, 0, want.Size())
	for _, rec := range all {
		if want.Contains(rec.ParticipantID) {
			matched = append(matched, rec)
		}
	}
	s.metrics.RecordRegistryRows(len(all), len(matched))
	s.logger.Info(ctx, "registry participants filtered",
		logger.Int("fetched", len(all)),
		logger.Int("wanted", want.Size()),
		logger.Int("matched", len(matched)),
	)

	if !s.cfg.Demographics || len(matched) == 0 {
		return matched, nil
	}

	demographics, err := s.readDemographics(ctx, matched)
	if err != nil {
		return nil, err
	}
	return mergeDemographics(matched, demographics), nil
}

func (s *Store) readParticipants(ctx context.Context) ([]model.RegistryRecord, error) {
	start := time.Now()
	defer func() { s.metrics.RecordRegistryQuery(metrics.QueryParticipants, millisSince(start)) }()

	rows, err := s.db.QueryContext(ctx, s.cfg.ParticipantsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: participants query: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.RegistryRecord
	err = scanProjected(rows, participantColumns, func(v []string) {
		out = append(out, model.RegistryRecord{
			TrustID:       v[0],
			LastName:      v[1],
			FirstName:     v[2],
			DateOfBirth:   v[3],
			ParticipantID: v[4],
		})
	})
	if err != nil {
		return nil, fmt.Errorf("participants query: %w", err)
	}
	return out, nil
}

type demographic struct {
	nhsNumber string
	gender    string
}

func (s *Store) readDemographics(ctx context.Context, matched []model.RegistryRecord) (map[string][]demographic, error) {
	trusts := dedupe.New(dedupe.WithCapacity(len(matched)))
	for _, rec := range matched {
		trusts.SeenAndRecord(rec.TrustID)
	}
	keys := trusts.Values()
	out := make(map[string][]demographic, len(keys))

	for lo := 0; lo < len(keys); lo += maxParams {
		hi := min(lo+maxParams, len(keys))
		if err := s.readDemographicsBatch(ctx, keys[lo:hi], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) readDemographicsBatch(ctx context.Context, keys []string, out map[string][]demographic) error {
	start := time.Now()
	defer func() { s.metrics.RecordRegistryQuery(metrics.QueryDemographics, millisSince(start)) }()

	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		marks[i] = placeholder(s.cfg.Driver, i+1)
		args[i] = k
	}
	query := fmt.Sprintf(s.cfg.DemographicsQuery, strings.Join(marks, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: demographics query: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	err = scanProjected(rows, demographicColumns, func(v []string) {
		out[v[0]] = append(out[v[0]], demographic{nhsNumber: v[1], gender: v[2]})
	})
	if err != nil {
		return fmt.Errorf("demographics query: %w", err)
	}
	return nil
}

// mergeDemographics left-joins demographics onto records by trust id. Several
// demographic rows for one trust id yield one record each.
func mergeDemographics(records []model.RegistryRecord, byTrust map[string][]demographic) []model.RegistryRecord {
	out := make([]model.RegistryRecord, 0, len(records))
	for _, rec := range records {
		demos := byTrust[rec.TrustID]
		if len(demos) == 0 {
			out = append(out, rec)
			continue
		}
		for _, d := range demos {
			enriched := rec
			enriched.NHSNumber = d.nhsNumber
			enriched.Gender = d.gender
			out = append(out, enriched)
		}
	}
	return out
}

func millisSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
