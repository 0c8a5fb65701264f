// replay runs a fixture file through the evaluators and reports each
// step's outcome. Exit code 1 when any step fails its expectation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/replay"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output results as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	fix, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results, sum, err := replay.Run(fix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Description string              `json:"description"`
			Results     []replay.StepResult `json:"results"`
			Summary     replay.Summary      `json:"summary"`
		}{fix.Description, results, sum}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if fix.Description != "" {
			fmt.Println(fix.Description)
		}
		for _, r := range results {
			mark := "ok"
			if !r.Passed {
				mark = "FAIL"
			}
			fmt.Printf("%-4s [%s] %s\n", mark, r.Op, r.Name)
			if r.Detail != "" {
				fmt.Printf("     %s\n", r.Detail)
			}
		}
		fmt.Printf("%d steps: %d passed, %d failed\n", sum.Total, sum.Passed, sum.Failed)
	}

	if sum.Failed > 0 {
		os.Exit(1)
	}
}
