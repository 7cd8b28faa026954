package ndl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnedStatusMarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		status OwnedStatus
		want   string
	}{
		{name: "owned", status: OwnedYes, want: "true"},
		{name: "not owned", status: OwnedNo, want: "false"},
		{name: "unknown", status: OwnedUnknown, want: `"unknown"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := json.Marshal(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(encoded))
		})
	}
}

func TestOwnedFromBool(t *testing.T) {
	assert.Equal(t, OwnedYes, Owned(true))
	assert.Equal(t, OwnedNo, Owned(false))
}
