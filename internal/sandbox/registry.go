package sandbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/gwrecon/internal/adapters/registry"
	"github.com/okian/gwrecon/internal/domain/model"
)

// Queries matching the seeded schema.
const (
	ParticipantsQuery = `SELECT PatientTrustID, LastName, FirstName, DoB, "Participant Id", GMC FROM gmc_participants ORDER BY rowid`
	DemographicsQuery = `SELECT PatientTrustID, NHSNo, Gender FROM vw_PatientDemographics WHERE PatientTrustID IN (%s)`
)

var schema = []string{
	`DROP TABLE IF EXISTS gmc_participants`,
	`DROP TABLE IF EXISTS vw_PatientDemographics`,
	`CREATE TABLE gmc_participants (
		PatientTrustID TEXT NOT NULL,
		LastName TEXT,
		FirstName TEXT,
		DoB TEXT,
		"Participant Id" TEXT,
		GMC TEXT
	)`,
	`CREATE TABLE vw_PatientDemographics (
		PatientTrustID TEXT NOT NULL,
		NHSNo TEXT,
		Gender TEXT
	)`,
}

// SeedRegistry (re)creates the registry tables in the SQLite file at path.
// The first registry record gets no demographics row.
func SeedRegistry(ctx context.Context, path string, records []model.RegistryRecord) (err error) {
	db, err := sql.Open(registry.DriverSQLite, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	for i, rec := range records {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO gmc_participants VALUES (?, ?, ?, ?, ?, ?)`,
			rec.TrustID, rec.LastName, rec.FirstName, rec.DateOfBirth, rec.ParticipantID, "Wessex",
		); err != nil {
			return fmt.Errorf("insert participant %s: %w", rec.ParticipantID, err)
		}
		if i == 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO vw_PatientDemographics VALUES (?, ?, ?)`,
			rec.TrustID, rec.NHSNumber, rec.Gender,
		); err != nil {
			return fmt.Errorf("insert demographics %s: %w", rec.TrustID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
