package game

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RNG is a mulberry32 generator. It is a plain value: copying an RNG forks
// the stream, which is what lets a GameState carry its own randomness and
// stay copy-on-write. It is not suitable for anything security related.
type RNG struct {
	state uint32
}

// NewRNG returns a generator seeded with the low 32 bits of seed.
func NewRNG(seed int64) RNG {
	return RNG{state: uint32(seed)}
}

// Seed resets the stream.
func (r *RNG) Seed(seed int64) {
	r.state = uint32(seed)
}

// Next advances the stream and returns a value in [0, 1).
func (r *RNG) Next() float64 {
	r.state += 0x6d2b79f5
	s := r.state
	t := (s ^ (s >> 15)) * (1 | s)
	t = (t + (t^(t>>7))*(61|t)) ^ t
	return float64(t^(t>>14)) / 4294967296
}

// Intn returns a value in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return int(r.Next() * float64(n))
}

// Shuffle performs a Fisher-Yates shuffle from the last index down.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

// uint32 draws one value scaled to the full 32-bit range.
func (r *RNG) uint32() uint32 {
	return uint32(r.Next() * 4294967296)
}

// MarshalJSON encodes the generator position so a serialized state can be
// resumed exactly.
func (r RNG) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.state)
}

// UnmarshalJSON restores a generator position written by MarshalJSON.
func (r *RNG) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.state)
}

// matchIDPrefix returns the first 8 hex digits of a match id with dashes removed.
func matchIDPrefix(matchID string) uint32 {
	hex := strings.ReplaceAll(matchID, "-", "")
	if len(hex) > 8 {
		hex = hex[:8]
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// SeedFromMatchID derives the shared match seed from the match identifier,
// so both peers agree on it without a handshake.
func SeedFromMatchID(matchID string) int64 {
	return int64(matchIDPrefix(matchID))
}

// FirstPlayerFromMatchID picks the starting player index from the match
// identifier: 0 when the id prefix is even, 1 otherwise.
func FirstPlayerFromMatchID(matchID string) int {
	return int(matchIDPrefix(matchID) % 2)
}
