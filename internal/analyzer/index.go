package analyzer

import (
	"fmt"

	"hashlookup/internal/timeline"
)

// hashIndex maps a sha256 value to the events carrying it, in stream order.
// The same hash can index many events (repeated file references).
type hashIndex map[string][]timeline.Event

// buildIndex drains the cursor exactly once. Extraction failures are counted
// and logged but never abort the scan; a stream read error does.
func (a *Analyzer) buildIndex(cur timeline.Cursor, stats *runStats) (hashIndex, error) {
	index := make(hashIndex)
	for cur.Next() {
		ev := cur.Event()
		stats.totalEvents++
		if a.metrics != nil {
			a.metrics.IncEventsScanned()
		}

		hash, xerr := extractHash(ev.Source(), a.fields)
		if xerr != nil {
			stats.extractErrors++
			if a.metrics != nil {
				a.metrics.IncExtractionErrors()
			}
			a.log.Printf("skipping event (%s): %v", xerr.Reason, xerr)
			continue
		}
		index[hash] = append(index[hash], ev)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read event stream: %w", err)
	}
	return index, nil
}
