package lockstep

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// maxFrameLine bounds a single line of an action log.
const maxFrameLine = 1 << 20

// ReplayResult summarizes a replayed action log.
type ReplayResult struct {
	Frames   int
	Desyncs  []DesyncError
	State    game.GameState
	Checksum string
}

// WriteFrame appends f to an action log as one JSON line.
func WriteFrame(w io.Writer, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", f.Seq, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Replay applies a JSON lines action log to r. Blank lines are skipped.
// Checksum mismatches are collected and replay continues; any other error
// stops it with the line number.
func (r *Replica) Replay(log io.Reader) (ReplayResult, error) {
	var result ReplayResult

	scanner := bufio.NewScanner(log)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLine)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var f Frame
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return result, fmt.Errorf("line %d: failed to decode frame: %w", line, err)
		}

		_, err := r.Receive(f)
		var desync *DesyncError
		switch {
		case errors.As(err, &desync):
			result.Desyncs = append(result.Desyncs, *desync)
		case err != nil:
			return result, fmt.Errorf("line %d: %w", line, err)
		}
		result.Frames++
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read action log: %w", err)
	}

	result.State = r.State()
	sum, err := game.Checksum(result.State)
	if err != nil {
		return result, err
	}
	result.Checksum = sum
	return result, nil
}
