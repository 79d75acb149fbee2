package adapter

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Config holds connection settings. URL, when set, wins over the
// individual fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSL      bool
	// Options are extra connection parameters. For PostgreSQL they become
	// query parameters of the connection string (pool_max_conns,
	// application_name, ...); the "schema" key selects the schema used by
	// TableExists and is not sent to the server.
	Options map[string]string
}

// PostgresURL renders the configuration as a postgres:// connection string.
func (c Config) PostgresURL() string {
	if c.URL != "" {
		return c.URL
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}
	if c.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(c.Port))
	}

	u := url.URL{Scheme: "postgres", Host: host, Path: "/" + c.Database}
	switch {
	case c.Username != "" && c.Password != "":
		u.User = url.UserPassword(c.Username, c.Password)
	case c.Username != "":
		u.User = url.User(c.Username)
	}

	q := url.Values{}
	if c.SSL {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	for k, v := range c.Options {
		if k == "schema" {
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Schema returns the PostgreSQL schema used for table lookups.
func (c Config) Schema() string {
	if s := c.Options["schema"]; s != "" {
		return s
	}
	return "public"
}

// SQLitePath returns the database file of a SQLite configuration.
func (c Config) SQLitePath() string {
	if c.URL != "" {
		return strings.TrimPrefix(c.URL, "sqlite://")
	}
	return c.Database
}

// ParseURL detects the adapter tag of a database URL and returns a Config
// for it. Supported schemes are postgres://, postgresql:// and sqlite://.
func ParseURL(raw string) (string, Config, error) {
	if raw == "" {
		return "", Config{}, fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return "postgres", Config{URL: raw}, nil
	}

	if strings.HasPrefix(raw, "sqlite://") {
		return "sqlite", Config{Database: strings.TrimPrefix(raw, "sqlite://")}, nil
	}

	return "", Config{}, fmt.Errorf("%w: invalid database URL scheme (must start with postgres://, postgresql:// or sqlite://)", ErrUnsupportedAdapter)
}
