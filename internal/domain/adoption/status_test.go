package adoption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDenied, true},
		{StatusApproved, StatusDenied, true},
		{StatusApproved, StatusPending, false},
		{StatusDenied, StatusApproved, false},
		{StatusDenied, StatusPending, false},
		{Status("Unknown"), StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.True(t, StatusDenied.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("approved")
	assert.Error(t, err)
}
