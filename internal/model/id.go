package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewMissionID generates a mission identifier ("m-" + 12 hex chars).
// Every audit record and store row for one daemon run carries the same ID.
func NewMissionID() string {
	return prefixedID("m", 12)
}

// NewDecisionID generates a per-decision identifier ("d-" + 8 hex chars).
func NewDecisionID() string {
	return prefixedID("d", 8)
}

func prefixedID(prefix string, hexLen int) string {
	b := make([]byte, (hexLen+1)/2)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return fmt.Sprintf("%s-%x", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b)[:hexLen])
}
