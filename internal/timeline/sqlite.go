package timeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	data  TEXT NOT NULL,
	tags  TEXT NOT NULL DEFAULT '[]',
	attrs TEXT NOT NULL DEFAULT '{}'
)`

// SQLiteStore is a timeline persisted in a single sqlite file: one row per
// event with a JSON payload and JSON tag/attribute columns. It backs the CLI
// run command.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a timeline database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open timeline %s: %w", path, err)
	}
	if _, err := db.Exec(createEventsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize timeline %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append stores a new event payload and returns its id.
func (s *SQLiteStore) Append(ctx context.Context, data map[string]any) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal event payload: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO events (data) VALUES (?)`, string(payload))
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return id, nil
}

// Stream selects events carrying at least one of the given payload fields.
// Field names are code-owned constants, not user input, so they are inlined
// into the json_extract paths.
func (s *SQLiteStore) Stream(ctx context.Context, fields []string) (Cursor, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one payload field is required")
	}
	predicates := make([]string, 0, len(fields))
	for _, field := range fields {
		predicates = append(predicates, fmt.Sprintf("json_extract(data, '$.%s') IS NOT NULL", field))
	}
	query := "SELECT id, data, tags, attrs FROM events WHERE " +
		strings.Join(predicates, " OR ") + " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return &sqliteCursor{store: s, rows: rows}, nil
}

// Annotations reads back the committed tags and attributes of one event.
func (s *SQLiteStore) Annotations(ctx context.Context, id int64) ([]string, map[string]any, error) {
	var rawTags, rawAttrs string
	err := s.db.QueryRowContext(ctx,
		`SELECT tags, attrs FROM events WHERE id = ?`, id).Scan(&rawTags, &rawAttrs)
	if err != nil {
		return nil, nil, fmt.Errorf("read event %d: %w", id, err)
	}
	var tags []string
	if err := json.Unmarshal([]byte(rawTags), &tags); err != nil {
		return nil, nil, fmt.Errorf("decode tags of event %d: %w", id, err)
	}
	attrs := make(map[string]any)
	if err := json.Unmarshal([]byte(rawAttrs), &attrs); err != nil {
		return nil, nil, fmt.Errorf("decode attributes of event %d: %w", id, err)
	}
	return tags, attrs, nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close timeline: %w", err)
	}
	return nil
}

type sqliteCursor struct {
	store   *SQLiteStore
	rows    *sql.Rows
	current *sqliteEvent
	err     error
}

func (c *sqliteCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var (
		id                         int64
		rawData, rawTags, rawAttrs string
	)
	if err := c.rows.Scan(&id, &rawData, &rawTags, &rawAttrs); err != nil {
		c.err = fmt.Errorf("scan event row: %w", err)
		return false
	}
	ev := &sqliteEvent{store: c.store, id: id, attrs: make(map[string]any)}
	if err := json.Unmarshal([]byte(rawData), &ev.data); err != nil {
		c.err = fmt.Errorf("decode event %d payload: %w", id, err)
		return false
	}
	if err := json.Unmarshal([]byte(rawTags), &ev.tags); err != nil {
		c.err = fmt.Errorf("decode event %d tags: %w", id, err)
		return false
	}
	if err := json.Unmarshal([]byte(rawAttrs), &ev.attrs); err != nil {
		c.err = fmt.Errorf("decode event %d attributes: %w", id, err)
		return false
	}
	c.current = ev
	return true
}

func (c *sqliteCursor) Event() Event { return c.current }

func (c *sqliteCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *sqliteCursor) Close() error { return c.rows.Close() }

// sqliteEvent carries existing tags/attributes so repeated tagging stays
// idempotent across runs, not just within one.
type sqliteEvent struct {
	store *SQLiteStore
	id    int64
	data  map[string]any
	tags  []string
	attrs map[string]any
}

// ID exposes the row id for read-back in tests and tooling.
func (e *sqliteEvent) ID() int64 { return e.id }

func (e *sqliteEvent) Source() map[string]any { return e.data }

func (e *sqliteEvent) AddTags(tags []string) {
	for _, tag := range tags {
		if !slices.Contains(e.tags, tag) {
			e.tags = append(e.tags, tag)
		}
	}
}

func (e *sqliteEvent) AddAttributes(attrs map[string]any) {
	for name, value := range attrs {
		e.attrs[name] = value
	}
}

func (e *sqliteEvent) Commit() error {
	tags, err := json.Marshal(e.tags)
	if err != nil {
		return fmt.Errorf("marshal tags of event %d: %w", e.id, err)
	}
	attrs, err := json.Marshal(e.attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes of event %d: %w", e.id, err)
	}
	if _, err := e.store.db.Exec(
		`UPDATE events SET tags = ?, attrs = ? WHERE id = ?`,
		string(tags), string(attrs), e.id); err != nil {
		return fmt.Errorf("commit event %d: %w", e.id, err)
	}
	return nil
}
