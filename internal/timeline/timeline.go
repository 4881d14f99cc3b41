// Package timeline abstracts the event store the analyzer enriches. The
// engine never owns events; it reads their payload, applies tags and
// attributes, and commits each touched event exactly once per run.
package timeline

import "context"

// Event is one record from the event store. Source is the read-only payload;
// AddTags and AddAttributes stage annotations that Commit persists. Tag
// application is idempotent: adding a label the event already carries is a
// no-op, never a duplicate.
type Event interface {
	Source() map[string]any
	AddTags(tags []string)
	AddAttributes(attrs map[string]any)
	Commit() error
}

// Cursor iterates one event stream. It follows the sql.Rows shape: Next
// advances and reports whether an event is available, Event returns the
// current one, Err surfaces the first iteration error after Next returns
// false. Streams are finite and not restartable.
type Cursor interface {
	Next() bool
	Event() Event
	Err() error
	Close() error
}

// Source produces event streams. Stream selects events where at least one of
// the given payload fields is present.
type Source interface {
	Stream(ctx context.Context, fields []string) (Cursor, error)
}
