// caseinit creates the claims database if needed and opens a new case
// with every track in draft.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/config"
	"github.com/khjohns/unified-timeline-sub004/internal/logging"
	"github.com/khjohns/unified-timeline-sub004/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "path to claims.db")
	caseID := flag.String("case", "", "case ID (generated when empty)")
	category := flag.String("category", string(claim.CategoryClientChange),
		"liability category: client_change | client_circumstance | force_majeure")
	changeOrder := flag.Bool("change-order-eligible", false, "mark the case change-order eligible")
	flag.Parse()

	id := *caseID
	if id == "" {
		id = uuid.New().String()
	}

	switch claim.LiabilityCategory(*category) {
	case claim.CategoryClientChange, claim.CategoryClientCircumstance, claim.CategoryForceMajeure:
	default:
		fmt.Fprintf(os.Stderr, "unknown category %q\n", *category)
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cs := claim.NewCase(id, claim.LiabilityCategory(*category))
	cs.ChangeOrderEligible = *changeOrder

	if err := store.CreateCase(cs); err != nil {
		fmt.Fprintf(os.Stderr, "create case: %v\n", err)
		os.Exit(1)
	}
	if err := logging.LogDecision(store.DB(), logging.Entry{
		CaseID: id,
		Actor:  "system",
		Action: "open_case",
		Reason: fmt.Sprintf("category %s", *category),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("opened case %s (category %s) in %s\n", id, *category, *dbPath)
}
