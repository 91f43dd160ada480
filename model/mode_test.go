package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected SyncMode
		wantErr  bool
	}{
		{input: "auto", expected: ModeAuto},
		{input: "override", expected: ModeOverride},
		{input: "no_override", expected: ModeNoOverride},
		{input: "force", wantErr: true},
		{input: "", wantErr: true},
		{input: "AUTO", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, mode)
		})
	}
}

func TestDecisionConstructors(t *testing.T) {
	require.Equal(t, SyncDecision{Kind: DecisionDownload}, Download())
	require.Equal(t, SyncDecision{Kind: DecisionSkip, Reason: SkipExists}, Skip(SkipExists))
	require.Equal(t, SyncDecision{Kind: DecisionSkip, Reason: SkipSizeMatch}, Skip(SkipSizeMatch))
}
