package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashProof returns the sha256 hex digest of the proof's canonical JSON
// form. Re-marshalling through interface{} sorts object keys, so two
// payloads that differ only in key order hash identically.
func HashProof(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return HashBytes(raw)
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return HashBytes(raw)
	}
	return HashBytes(canonical)
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func HashString(s string) string {
	return HashBytes([]byte(s))
}
