// Package analyzer reconciles sha256 values found in a timeline against the
// hashR reference catalog and tags every event carrying a known hash. One Run
// is one pass: scan the stream, batch the distinct hashes against the
// catalog, annotate the matching events, summarize.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"hashlookup/internal/analyzer/metrics"
	"hashlookup/internal/hashr"
	"hashlookup/internal/timeline"
)

// DefaultBatchSize bounds one catalog round-trip. Large timelines easily hold
// hundreds of thousands of distinct hashes; membership lists beyond this get
// split.
const DefaultBatchSize = 50000

// Analyzer holds the run dependencies. It keeps no per-run state: counters
// live in a runStats created inside Run, so concurrent or repeated runs never
// bleed into each other.
type Analyzer struct {
	connector          hashr.Connector
	source             timeline.Source
	log                *log.Logger
	metrics            *metrics.Metrics
	fields             []string
	batchSize          int
	addSourceAttribute bool
}

// New validates the dependencies and returns a configured Analyzer. metrics
// may be nil (tests, one-shot CLI runs). A batchSize < 1 falls back to the
// default.
func New(connector hashr.Connector, source timeline.Source, logger *log.Logger, m *metrics.Metrics, batchSize int, addSourceAttribute bool) (*Analyzer, error) {
	if connector == nil {
		return nil, fmt.Errorf("hashR connector is required")
	}
	if source == nil {
		return nil, fmt.Errorf("event source is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Analyzer{
		connector:          connector,
		source:             source,
		log:                logger,
		metrics:            m,
		fields:             HashFields,
		batchSize:          batchSize,
		addSourceAttribute: addSourceAttribute,
	}, nil
}

// Run executes one full pass. The catalog connection is acquired up front,
// before any event is touched, and released on every exit path including the
// empty-timeline early return. Setup and batch-query failures are returned as
// errors; per-event problems only move counters.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	stats := &runStats{}
	start := time.Now()

	store, err := a.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to hashR: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.log.Printf("run %s: %v", runID, cerr)
		}
	}()

	cur, err := a.source.Stream(ctx, a.fields)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	defer cur.Close()

	index, err := a.buildIndex(cur, stats)
	if err != nil {
		return nil, err
	}
	stats.uniqueHashes = len(index)

	if len(index) == 0 {
		a.log.Printf("run %s: no sha256 fields in %d events", runID, stats.totalEvents)
		return emptyResult(runID), nil
	}
	a.log.Printf("run %s: found %d unique hashes in %d events", runID, len(index), stats.totalEvents)

	hashes := make([]string, 0, len(index))
	for hash := range index {
		hashes = append(hashes, hash)
	}

	matches, err := a.reconcile(ctx, store, hashes)
	if err != nil {
		return nil, err
	}
	stats.matchedHashes = len(matches)
	if a.metrics != nil {
		a.metrics.AddHashesMatched(len(matches))
	}

	for hash, sources := range matches {
		for _, ev := range index[hash] {
			a.annotateEvent(hash, sources, ev, stats)
		}
	}

	if a.metrics != nil {
		a.metrics.ObserveRunDuration(time.Since(start))
	}
	return buildResult(runID, stats), nil
}
