package analyzer

import "fmt"

// HashFields are the payload fields that may carry a sha256 value, in
// priority order: the first present field wins, even if a later one also
// holds a value.
var HashFields = []string{"hash_sha256", "hash", "sha256", "sha256_hash"}

// sha256HexLen is the exact length of a hex-encoded sha256 digest. Values of
// any other length are rejected, never truncated or padded.
const sha256HexLen = 64

// Extraction failure reasons.
const (
	ReasonNoHashField   = "no-hash-field"
	ReasonInvalidLength = "invalid-length"
)

// ExtractError reports why no usable hash came out of an event payload.
// Candidate and Length are only set for invalid-length rejections.
type ExtractError struct {
	Reason    string
	Candidate string
	Length    int
}

func (e *ExtractError) Error() string {
	if e.Reason == ReasonInvalidLength {
		return fmt.Sprintf("hash %q has length %d, want %d", e.Candidate, e.Length, sha256HexLen)
	}
	return "no field with a hash found in this event"
}

// extractHash scans the payload for the first recognized hash field and
// validates its shape. The value is returned unmodified: no case
// normalization happens here.
func extractHash(source map[string]any, fields []string) (string, *ExtractError) {
	var candidate string
	found := false
	for _, field := range fields {
		if value, ok := source[field]; ok {
			candidate, _ = value.(string)
			found = true
			break
		}
	}
	if !found || candidate == "" {
		return "", &ExtractError{Reason: ReasonNoHashField}
	}
	if len(candidate) != sha256HexLen {
		return "", &ExtractError{
			Reason:    ReasonInvalidLength,
			Candidate: candidate,
			Length:    len(candidate),
		}
	}
	return candidate, nil
}
