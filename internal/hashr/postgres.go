package hashr

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/lib/pq"
)

const connectTimeout = 10 * time.Second

// requiredTables must all exist in a populated hashR database.
var requiredTables = []string{"samples", "sources", "samples_sources"}

// PostgresConfig carries the hashR database coordinates. It implements
// Connector so the analyzer can open the connection itself.
type PostgresConfig struct {
	User     string
	Password string
	Addr     string
	Port     int
	Name     string
	SSLMode  string
}

func (c PostgresConfig) dsn(password string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, password),
		Host:   fmt.Sprintf("%s:%d", c.Addr, c.Port),
		Path:   c.Name,
	}
	q := url.Values{}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted returns the connection string with the password masked. Every log
// line and error message uses this form, never the real DSN.
func (c PostgresConfig) Redacted() string {
	return c.dsn("***")
}

// Connect opens the hashR database, verifies it is reachable and that the
// expected schema is present. A missing table means the database was not
// populated by a recent hashR version and is a fatal setup error.
func (c PostgresConfig) Connect(ctx context.Context) (Store, error) {
	db, err := sql.Open("postgres", c.dsn(c.Password))
	if err != nil {
		return nil, fmt.Errorf("open hashR database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to hashR database %s: %w", c.Redacted(), err)
	}

	store := &PostgresStore{db: db}
	if err := store.checkSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// PostgresStore queries a hashR postgres database.
type PostgresStore struct {
	db *sql.DB
}

func (s *PostgresStore) checkSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_name = ANY($1)`,
		pq.Array(requiredTables))
	if err != nil {
		return fmt.Errorf("inspect hashR schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool, len(requiredTables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("inspect hashR schema: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect hashR schema: %w", err)
	}

	for _, table := range requiredTables {
		if !present[table] {
			return fmt.Errorf(
				"required table %q not found in the hashR database; "+
					"populate it with a recent hashR version (required tables: samples, sources, samples_sources)",
				table)
		}
	}
	return nil
}

// sourcesQuery joins samples_sources to sources and collapses multiple source
// identifiers of the same repo into one ';'-separated list per sample.
const sourcesQuery = `
SELECT ss.sample_sha256, so.reponame, string_agg(so.sourceid::text, ';')
FROM samples_sources ss
JOIN sources so ON ss.source_sha256 = so.sha256
WHERE ss.sample_sha256 = ANY($1)
GROUP BY ss.sample_sha256, so.reponame`

const membershipQuery = `SELECT sha256 FROM samples WHERE sha256 = ANY($1)`

func (s *PostgresStore) Lookup(ctx context.Context, hashes []string, withSources bool) ([]Row, error) {
	if withSources {
		return s.lookupWithSources(ctx, hashes)
	}
	return s.lookupMembership(ctx, hashes)
}

func (s *PostgresStore) lookupMembership(ctx context.Context, hashes []string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, membershipQuery, pq.Array(hashes))
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.SHA256); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sample rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) lookupWithSources(ctx context.Context, hashes []string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, sourcesQuery, pq.Array(hashes))
	if err != nil {
		return nil, fmt.Errorf("query samples_sources: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			sample    string
			repoName  sql.NullString
			sourceIDs sql.NullString
		)
		if err := rows.Scan(&sample, &repoName, &sourceIDs); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		source := TagsOnly
		if repoName.Valid && sourceIDs.Valid {
			source = repoName.String + ":" + sourceIDs.String
		}
		out = append(out, Row{SHA256: sample, Source: source})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read source rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close hashR database: %w", err)
	}
	return nil
}
