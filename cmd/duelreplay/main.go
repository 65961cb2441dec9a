// Command duelreplay re-runs a recorded match from its setup and action log
// and reports the final state and checksum.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ramonehamilton/spellduel/internal/lockstep"
	"github.com/ramonehamilton/spellduel/internal/match"
)

var (
	setupPath = flag.String("setup", "", "Match setup JSON, as served by /api/v1/matches/{id}/setup")
	logPath   = flag.String("log", "", "Action log, one frame per line")
	dumpState = flag.Bool("state", false, "Print the final state as JSON")
)

func main() {
	flag.Parse()

	if *setupPath == "" || *logPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: duelreplay -setup setup.json -log actions.jsonl")
		flag.PrintDefaults()
		os.Exit(2)
	}

	setup, err := readSetup(*setupPath)
	if err != nil {
		log.Fatalf("Failed to read setup: %v", err)
	}

	f, err := os.Open(*logPath)
	if err != nil {
		log.Fatalf("Failed to open action log: %v", err)
	}
	defer f.Close()

	replica := lockstep.NewReplica(lockstep.Config{Setup: setup.Setup, Seed: setup.Seed})
	result, err := replica.Replay(f)
	if err != nil {
		log.Fatalf("Replay failed after %d frames: %v", result.Frames, err)
	}

	state := result.State
	fmt.Printf("Match:    %s\n", setup.MatchID)
	fmt.Printf("Frames:   %d\n", result.Frames)
	fmt.Printf("Turn:     %d (%s)\n", state.TurnNumber, state.Phase)
	for _, p := range state.Players {
		fmt.Printf("  %-12s hp %2d/%-2d  mana %d/%d  hand %d  board %d  deck %d\n",
			p.ID, p.Hero.HP, p.Hero.MaxHP, p.Mana, p.MaxMana, len(p.Hand), len(p.Board), len(p.Deck))
	}
	if state.Winner != "" {
		fmt.Printf("Winner:   %s\n", state.Winner)
	}
	fmt.Printf("Checksum: %s\n", result.Checksum)

	for _, d := range result.Desyncs {
		fmt.Printf("DESYNC    %v\n", &d)
	}

	if *dumpState {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode state: %v", err)
		}
		fmt.Println(string(data))
	}

	if len(result.Desyncs) > 0 {
		os.Exit(1)
	}
}

// readSetup accepts a bare setup or the API's {"data": ...} envelope.
func readSetup(path string) (*match.MatchSetup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data *match.MatchSetup `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var setup match.MatchSetup
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &setup, nil
}
