package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHash(t *testing.T) {
	valid := strings.Repeat("a", 64)
	mixedCase := strings.Repeat("A", 32) + strings.Repeat("f", 32)

	tests := []struct {
		name       string
		source     map[string]any
		wantHash   string
		wantReason string
	}{
		{
			name:     "valid hash in primary field",
			source:   map[string]any{"hash_sha256": valid},
			wantHash: valid,
		},
		{
			name:     "valid hash in fallback field",
			source:   map[string]any{"sha256_hash": valid, "message": "x"},
			wantHash: valid,
		},
		{
			name:     "value returned unmodified, no case normalization",
			source:   map[string]any{"sha256": mixedCase},
			wantHash: mixedCase,
		},
		{
			// hash_sha256 outranks sha256 regardless of values.
			name:     "priority order decides between candidates",
			source:   map[string]any{"sha256": strings.Repeat("b", 64), "hash_sha256": valid},
			wantHash: valid,
		},
		{
			name:       "no recognized field",
			source:     map[string]any{"message": "nothing here"},
			wantReason: ReasonNoHashField,
		},
		{
			name:       "present field with empty value",
			source:     map[string]any{"hash": ""},
			wantReason: ReasonNoHashField,
		},
		{
			name:       "too short",
			source:     map[string]any{"sha256": "abc123"},
			wantReason: ReasonInvalidLength,
		},
		{
			name:       "too long",
			source:     map[string]any{"sha256": valid + "ff"},
			wantReason: ReasonInvalidLength,
		},
		{
			// A higher-priority field wins even when its value is unusable.
			name:       "invalid candidate shadows valid fallback",
			source:     map[string]any{"hash": "tooshort", "sha256": valid},
			wantReason: ReasonInvalidLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, xerr := extractHash(tt.source, HashFields)
			if tt.wantReason != "" {
				require.NotNil(t, xerr)
				assert.Equal(t, tt.wantReason, xerr.Reason)
				assert.Empty(t, hash)
				return
			}
			require.Nil(t, xerr)
			assert.Equal(t, tt.wantHash, hash)
		})
	}
}

func TestExtractErrorDiagnostics(t *testing.T) {
	_, xerr := extractHash(map[string]any{"sha256": "abcdef"}, HashFields)
	require.NotNil(t, xerr)
	assert.Equal(t, "abcdef", xerr.Candidate)
	assert.Equal(t, 6, xerr.Length)
	assert.Contains(t, xerr.Error(), "length 6")
	assert.Contains(t, xerr.Error(), "64")
}
