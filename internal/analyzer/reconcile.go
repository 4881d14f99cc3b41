package analyzer

import (
	"context"
	"fmt"

	"hashlookup/internal/hashr"
)

// matchResult maps each hash confirmed in the reference catalog to its set of
// provenance descriptors. Presence in the map alone signals a match: the set
// stays empty when provenance tracking is off.
type matchResult map[string]map[string]struct{}

// batchHashes slices the distinct hash list into fixed-size batches; the last
// batch may be smaller.
func batchHashes(hashes []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(hashes); start += size {
		end := start + size
		if end > len(hashes) {
			end = len(hashes)
		}
		batches = append(batches, hashes[start:end])
	}
	return batches
}

// reconcile checks the distinct hashes against the catalog in batches and
// merges the per-batch rows. The merge is commutative, so batch size and
// order never change the outcome. A failed batch query fails the whole run;
// a batch returning zero rows simply contributes nothing.
func (a *Analyzer) reconcile(ctx context.Context, store hashr.Store, hashes []string) (matchResult, error) {
	matches := make(matchResult)
	batches := batchHashes(hashes, a.batchSize)
	for i, batch := range batches {
		a.log.Printf("processing batch %d/%d (%d hashes)", i+1, len(batches), len(batch))
		rows, err := store.Lookup(ctx, batch, a.addSourceAttribute)
		if err != nil {
			return nil, fmt.Errorf("query hashR batch %d/%d: %w", i+1, len(batches), err)
		}
		if a.metrics != nil {
			a.metrics.IncBatchesIssued()
		}
		for _, row := range rows {
			set, ok := matches[row.SHA256]
			if !ok {
				set = make(map[string]struct{})
				matches[row.SHA256] = set
			}
			if row.Source != "" {
				set[row.Source] = struct{}{}
			}
		}
	}
	a.log.Printf("found %d matching hashes in hashR", len(matches))
	return matches, nil
}
