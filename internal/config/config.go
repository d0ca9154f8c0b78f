// Package config defines gwrecon configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case and bound with koanf struct tags.
// - New() returns defaults; Load layers a YAML file and env vars on top.
// - Collaborator endpoints and credentials only ever come from here.
package config

import (
	"strings"
	"time"

	"github.com/okian/gwrecon/internal/adapters/registry"
)

// Default registry queries. The participant procedure cannot filter by
// participant id, so it is always read in full.
const (
	DefaultParticipantsQuery = "EXEC SelectRegister_GMCParticipants_RegisterEntryDetails"
	DefaultDemographicsQuery = "SELECT PatientTrustID, NHSNo, Gender FROM vw_PatientDemographics WHERE PatientTrustID IN (%s)"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// CIPAPIBaseURL is the root of the interpretation request service.
	CIPAPIBaseURL string `koanf:"cipapi_base_url"`

	// CIPAPIToken is sent as a bearer token when non-empty.
	CIPAPIToken string `koanf:"cipapi_token"`

	// CIPAPITimeoutMS bounds each lookup.
	CIPAPITimeoutMS int `koanf:"cipapi_timeout_ms"`

	// RegistryName appears in missing-participant notices.
	RegistryName string `koanf:"registry_name"`

	// Registry connection: sqlserver, postgres or sqlite.
	RegistryDriver   string `koanf:"registry_driver"`
	RegistryHost     string `koanf:"registry_host"`
	RegistryPort     int    `koanf:"registry_port"`
	RegistryDatabase string `koanf:"registry_database"`
	RegistryUser     string `koanf:"registry_user"`
	RegistryPassword string `koanf:"registry_password"`

	// RegistryDSN overrides the individual connection fields when set.
	RegistryDSN string `koanf:"registry_dsn"`

	// RegistryParticipantsQuery is the unfiltered bulk participant read.
	RegistryParticipantsQuery string `koanf:"registry_participants_query"`

	// RegistryDemographics enables the NHS number / gender enrichment.
	RegistryDemographics bool `koanf:"registry_demographics"`

	// RegistryDemographicsQuery must hold exactly one %s for the IN list.
	RegistryDemographicsQuery string `koanf:"registry_demographics_query"`

	// MetricsTextfile, when set, receives run metrics in Prometheus text format.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		CIPAPIBaseURL:             "https://cipapi.genomicsengland.nhs.uk",
		CIPAPITimeoutMS:           30_000,
		RegistryName:              "GeneWorks",
		RegistryDriver:            registry.DriverSQLServer,
		RegistryDatabase:          "geneworks",
		RegistryParticipantsQuery: DefaultParticipantsQuery,
		RegistryDemographicsQuery: DefaultDemographicsQuery,
	}
}

// CIPAPITimeout returns the lookup timeout as a duration.
func (c *Config) CIPAPITimeout() time.Duration {
	return time.Duration(c.CIPAPITimeoutMS) * time.Millisecond
}

// Registry returns the registry adapter configuration.
func (c *Config) Registry() registry.Config {
	return registry.Config{
		Driver:            c.RegistryDriver,
		Host:              c.RegistryHost,
		Port:              c.RegistryPort,
		Database:          c.RegistryDatabase,
		User:              c.RegistryUser,
		Password:          c.RegistryPassword,
		DSN:               c.RegistryDSN,
		ParticipantsQuery: c.RegistryParticipantsQuery,
		Demographics:      c.RegistryDemographics,
		DemographicsQuery: c.RegistryDemographicsQuery,
	}
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.CIPAPIBaseURL) == "":
		return invalid("cipapi_base_url must not be empty")
	case c.CIPAPITimeoutMS <= 0:
		return invalid("cipapi_timeout_ms must be positive")
	case strings.TrimSpace(c.RegistryName) == "":
		return invalid("registry_name must not be empty")
	case strings.TrimSpace(c.RegistryParticipantsQuery) == "":
		return invalid("registry_participants_query must not be empty")
	}
	if !registry.SupportedDriver(c.RegistryDriver) {
		return invalid("unsupported registry_driver " + c.RegistryDriver)
	}
	if c.RegistryDemographics && strings.Count(c.RegistryDemographicsQuery, "%s") != 1 {
		return invalid("registry_demographics_query must contain exactly one %s")
	}
	return nil
}
