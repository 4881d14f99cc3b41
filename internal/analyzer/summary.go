package analyzer

import "fmt"

// Status of a completed run. Fatal setup and query errors surface as Go
// errors instead; "no matches" is still SUCCESS.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// PriorityNote is the informational priority hint attached to run results.
const PriorityNote = "NOTE"

// runStats is the per-run counter arena. Run builds a fresh one every
// invocation, so no state survives across runs.
type runStats struct {
	totalEvents    int
	extractErrors  int
	uniqueHashes   int
	matchedHashes  int
	taggedEvents   int
	zeroByteEvents int
	commitErrors   int
}

// Result is the run outcome handed back to the host: the same figures
// rendered once as plain text and once as markdown.
type Result struct {
	RunID    string `json:"run_id"`
	Status   Status `json:"status"`
	Priority string `json:"priority"`
	Summary  string `json:"summary"`
	Markdown string `json:"markdown"`
}

func buildResult(runID string, stats *runStats) *Result {
	return &Result{
		RunID:    runID,
		Status:   StatusSuccess,
		Priority: PriorityNote,
		Summary: fmt.Sprintf(
			"Found a total of %d events that contain a sha256 hash value - "+
				"%d / %d unique hashes known in hashR - %d events tagged - "+
				"%d entries were tagged as zerobyte files - %d events raised an error",
			stats.totalEvents, stats.matchedHashes, stats.uniqueHashes,
			stats.taggedEvents, stats.zeroByteEvents, stats.extractErrors),
		Markdown: fmt.Sprintf(
			"Found a total of %d events that contain a sha256 hash value\n"+
				"* %d / %d unique hashes known in hashR\n"+
				"* %d events tagged\n"+
				"* %d entries were tagged as zerobyte files\n"+
				"* %d events raised an error",
			stats.totalEvents, stats.matchedHashes, stats.uniqueHashes,
			stats.taggedEvents, stats.zeroByteEvents, stats.extractErrors),
	}
}

// emptyResult is the terminal state for a timeline without a single sha256
// field: a valid outcome, not a failure.
func emptyResult(runID string) *Result {
	const msg = "This timeline does not contain any fields with a sha256 hash."
	return &Result{
		RunID:    runID,
		Status:   StatusSuccess,
		Priority: PriorityNote,
		Summary:  msg,
		Markdown: msg,
	}
}
