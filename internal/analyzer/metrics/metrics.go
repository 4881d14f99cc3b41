package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the analyzer. Register once per
// process; the analyzer itself accepts a nil handle.
type Metrics struct {
	EventsScanned    prometheus.Counter
	ExtractionErrors prometheus.Counter
	BatchesIssued    prometheus.Counter
	HashesMatched    prometheus.Counter
	EventsTagged     prometheus.Counter
	ZeroByteEvents   prometheus.Counter
	RunDuration      prometheus.Histogram
}

// New creates and registers all analyzer metrics.
func New() *Metrics {
	return &Metrics{
		EventsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_events_scanned_total",
			Help: "Total number of timeline events consumed from the stream",
		}),
		ExtractionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_extraction_errors_total",
			Help: "Total number of events rejected by the hash extractor",
		}),
		BatchesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_batches_issued_total",
			Help: "Total number of batch queries issued to the hashR database",
		}),
		HashesMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_hashes_matched_total",
			Help: "Total number of distinct hashes found in the hashR catalog",
		}),
		EventsTagged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_events_tagged_total",
			Help: "Total number of events tagged as known-hash",
		}),
		ZeroByteEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hashlookup_zerobyte_events_total",
			Help: "Total number of events tagged as zerobyte-file",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hashlookup_run_duration_seconds",
			Help:    "Wall-clock duration of completed analyzer runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

func (m *Metrics) IncEventsScanned()    { m.EventsScanned.Inc() }
func (m *Metrics) IncExtractionErrors() { m.ExtractionErrors.Inc() }
func (m *Metrics) IncBatchesIssued()    { m.BatchesIssued.Inc() }
func (m *Metrics) IncEventsTagged()     { m.EventsTagged.Inc() }
func (m *Metrics) IncZeroByteEvents()   { m.ZeroByteEvents.Inc() }

func (m *Metrics) AddHashesMatched(n int) { m.HashesMatched.Add(float64(n)) }

func (m *Metrics) ObserveRunDuration(d time.Duration) { m.RunDuration.Observe(d.Seconds()) }
