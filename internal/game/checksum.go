package game

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Checksum hashes the canonical JSON form of the state with BLAKE2b-256.
// LastAction is left out; it is bookkeeping, not game state.
func Checksum(state GameState) (string, error) {
	state.LastAction = nil
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// MustChecksum is Checksum for states known to encode cleanly.
func MustChecksum(state GameState) string {
	sum, err := Checksum(state)
	if err != nil {
		panic(err)
	}
	return sum
}
