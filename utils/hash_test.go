package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashProofKeyOrderInvariant(t *testing.T) {
	a := HashProof(json.RawMessage(`{"version":"1.0","data":"abc"}`))
	b := HashProof(json.RawMessage(`{"data":"abc","version":"1.0"}`))
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestHashProofDistinguishesPayloads(t *testing.T) {
	a := HashProof(json.RawMessage(`{"data":"abc"}`))
	b := HashProof(json.RawMessage(`{"data":"abd"}`))
	require.NotEqual(t, a, b)
}

func TestHashProofFallsBackOnInvalidJSON(t *testing.T) {
	raw := json.RawMessage(`not-json`)
	require.Equal(t, HashBytes(raw), HashProof(raw))
}

func TestHashStringStable(t *testing.T) {
	require.Equal(t, HashString("session-123"), HashString("session-123"))
	require.NotEqual(t, HashString("session-123"), HashString("session-124"))
}
