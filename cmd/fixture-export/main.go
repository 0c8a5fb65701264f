// fixture-export dumps a stored case as a replay fixture skeleton: the
// snapshot plus an empty step list to fill in by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/config"
	"github.com/khjohns/unified-timeline-sub004/internal/replay"
	"github.com/khjohns/unified-timeline-sub004/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "path to claims.db")
	caseID := flag.String("case", "", "case to export")
	out := flag.String("out", "", "output file (stdout when empty)")
	flag.Parse()

	if *caseID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --case id [--db path] [--out fixture.json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cs, err := store.GetCase(*caseID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fix := replay.Fixture{
		Description: fmt.Sprintf("exported snapshot of case %s", *caseID),
		Case:        replay.FromCase(cs),
		Steps:       []replay.FixtureStep{},
	}

	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}
