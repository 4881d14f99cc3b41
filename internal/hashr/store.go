// Package hashr talks to the reference catalog of known file hashes built by
// the hashR project (https://github.com/google/hashr).
package hashr

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// TagsOnly is the provenance placeholder used when a hash is known but the
// catalog cannot say which source it came from.
const TagsOnly = "TagsOnly"

// Row is one catalog hit. Source is the formatted provenance descriptor
// ("reponame:sourceid", multiple ids joined with ';'), or empty when the
// lookup was membership-only.
type Row struct {
	SHA256 string
	Source string
}

// Store is the batch-query surface of the hashR database. Lookup returns the
// subset of hashes present in the catalog; with withSources set, each row also
// carries provenance. Implementations keep the connection open across calls,
// Close releases it.
type Store interface {
	Lookup(ctx context.Context, hashes []string, withSources bool) ([]Row, error)
	Close() error
}

// Connector acquires a Store. The analyzer connects once per run and closes
// the store on every exit path, so connection lifetime never outlives a run.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
}
