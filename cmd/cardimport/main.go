// Command cardimport adds cards from a CSV file or a JSON/TOML catalog to
// the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/storage"
)

var (
	dbPath      = flag.String("db", "spellduel.db", "Database path")
	csvPath     = flag.String("csv", "", "CSV file to import (- for stdin)")
	catalogPath = flag.String("catalog", "", "JSON or TOML catalog file to import")
	dryRun      = flag.Bool("dry-run", false, "Validate only, do not write to the database")
	strict      = flag.Bool("strict", false, "Import nothing if any row is invalid")
)

func main() {
	flag.Parse()

	if (*csvPath == "") == (*catalogPath == "") {
		fmt.Fprintln(os.Stderr, "Usage: cardimport -db spellduel.db (-csv cards.csv | -catalog cards.toml)")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var (
		list     []game.Card
		problems []cards.ImportError
		err      error
	)
	if *csvPath != "" {
		list, problems, err = readCSV(*csvPath)
	} else {
		list, err = cards.LoadCards(*catalogPath)
	}
	if err != nil {
		log.Fatalf("Failed to read cards: %v", err)
	}

	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "skipped %v\n", p)
	}
	fmt.Printf("%d valid cards, %d invalid rows\n", len(list), len(problems))

	if *strict && len(problems) > 0 {
		os.Exit(1)
	}
	if *dryRun || len(list) == 0 {
		return
	}

	config := storage.DefaultConfig(*dbPath)
	config.AutoMigrate = true
	db, err := storage.Open(config)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	saved, err := storage.NewService(db).SaveCards(context.Background(), list)
	if err != nil {
		log.Fatalf("Failed to save cards: %v", err)
	}
	for _, c := range saved {
		fmt.Printf("%4d  %-24s %2d mana  %s\n", c.ID, c.Name, c.ManaCost, c.Type)
	}
	fmt.Printf("Imported %d cards into %s\n", len(saved), *dbPath)
}

func readCSV(path string) ([]game.Card, []cards.ImportError, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		r = f
	}
	list, problems := cards.ImportCSV(r)
	return list, problems, nil
}
