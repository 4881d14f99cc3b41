package analyzer

import (
	"sort"

	"hashlookup/internal/timeline"
)

// ZeroByteSHA256 is the digest of empty input. Zero-length files occur in
// every catalogued source, so they get their own tag and no provenance,
// whatever the catalog reports for them.
const ZeroByteSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

const (
	// TagKnownHash marks events whose hash is present in the catalog.
	TagKnownHash = "known-hash"
	// TagZeroByte marks events carrying the empty-input digest.
	TagZeroByte = "zerobyte-file"
	// SourceAttribute holds the list of sources a known hash came from.
	SourceAttribute = "hashR_sample_sources"
)

// annotateEvent tags one event and commits it. Events are independent, so a
// commit failure is logged and counted but never stops the remaining events.
func (a *Analyzer) annotateEvent(hash string, sources map[string]struct{}, ev timeline.Event, stats *runStats) {
	tags := []string{TagKnownHash}
	if hash == ZeroByteSHA256 {
		tags = append(tags, TagZeroByte)
		stats.zeroByteEvents++
		if a.metrics != nil {
			a.metrics.IncZeroByteEvents()
		}
		sources = nil
	}
	ev.AddTags(tags)

	if a.addSourceAttribute && len(sources) > 0 {
		list := make([]string, 0, len(sources))
		for source := range sources {
			list = append(list, source)
		}
		sort.Strings(list)
		ev.AddAttributes(map[string]any{SourceAttribute: list})
	}

	if err := ev.Commit(); err != nil {
		stats.commitErrors++
		a.log.Printf("commit annotations for hash %s: %v", hash, err)
		return
	}
	stats.taggedEvents++
	if a.metrics != nil {
		a.metrics.IncEventsTagged()
	}
}
