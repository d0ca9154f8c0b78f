// Package registry reads participant records from the clinical registry
// database.
//
// The participant source is a stored procedure (or any query) that cannot be
// filtered by participant id, so every row is read and filtered in memory.
// An optional second query enriches matched rows with demographic fields
// keyed by the registry's trust id.
package registry

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/lib/pq"                // registers "postgres"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	_ "modernc.org/sqlite"              // registers "sqlite"
)

// Supported drivers. The values are the database/sql driver names.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

// Config describes how to reach the registry and what to read from it.
type Config struct {
	Driver   string
	Host     string
	Port     int // 0 keeps the driver default
	Database string
	User     string
	Password string

	// DSN is used verbatim when set and the fields above are ignored.
	DSN string

	// ParticipantsQuery returns every registry participant.
	ParticipantsQuery string

	// Demographics enables the second query. DemographicsQuery must contain
	// one %s which is replaced by the placeholder list for the trust ids.
	Demographics      bool
	DemographicsQuery string
}

// SupportedDriver reports whether driver is one of the registered drivers.
func SupportedDriver(driver string) bool {
	switch driver {
	case DriverSQLServer, DriverPostgres, DriverSQLite:
		return true
	}
	return false
}

// ConnString builds the driver data source name.
func (c Config) ConnString() (string, error) {
	if !SupportedDriver(c.Driver) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
	if c.DSN != "" {
		return c.DSN, nil
	}

	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database) == "" {
			return "", fmt.Errorf("%w: sqlite database path is required", ErrConfig)
		}
		return c.Database, nil
	case DriverSQLServer:
		u := c.url("sqlserver")
		q := url.Values{}
		if c.Database != "" {
			q.Set("database", c.Database)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	default:
		u := c.url("postgres")
		if c.Database != "" {
			u.Path = "/" + c.Database
		}
		return u.String(), nil
	}
}

func (c Config) url(scheme string) *url.URL {
	host := c.Host
	if c.Port > 0 {
		host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	u := &url.URL{Scheme: scheme, Host: host}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u
}

// redactedValue replaces secrets in Redacted output.
const redactedValue = "xxxxx"

// secretParam matches password settings in key=value DSNs, e.g.
// "password=..;" (sqlserver) or "password='..'" (postgres). Values may be
// quoted or wrapped in braces.
var secretParam = regexp.MustCompile(`(?i)\b(password|pwd)(\s*=\s*)('(?:[^']|'')*'|"[^"]*"|\{[^}]*\}|[^;\s&]*)`)

// Redacted returns the connection string with every password masked, for
// logs. Both URL and key=value DSNs are handled.
func (c Config) Redacted() string {
	dsn, err := c.ConnString()
	if err != nil {
		return ""
	}
	if u, perr := url.Parse(dsn); perr == nil && u.Scheme != "" && u.Host != "" {
		return redactURL(u)
	}
	return secretParam.ReplaceAllString(dsn, "${1}${2}"+redactedValue)
}

func redactURL(u *url.URL) string {
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redactedValue)
		}
	}
	q := u.Query()
	changed := false
	for k := range q {
		if strings.EqualFold(k, "password") || strings.EqualFold(k, "pwd") {
			q.Set(k, redactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// placeholder returns the n-th (1-based) bind parameter for the driver.
func placeholder(driver string, n int) string {
	switch driver {
	case DriverSQLServer:
		return "@p" + strconv.Itoa(n)
	case DriverPostgres:
		return "$" + strconv.Itoa(n)
	default:
		return "?"
	}
}
