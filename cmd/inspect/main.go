// inspect shows stored cases: the track states, the capability map each
// role currently holds, and the recent decision log.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/config"
	"github.com/khjohns/unified-timeline-sub004/internal/logging"
	"github.com/khjohns/unified-timeline-sub004/internal/permissions"
	"github.com/khjohns/unified-timeline-sub004/internal/state"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.DBPath, "path to claims.db")
	caseID := flag.String("case", "", "show single case detail")
	last := flag.Int("last", 20, "show N most recent cases or decisions")
	jsonOut := flag.Bool("json", cfg.JSONOutput, "output as JSON instead of tables")
	flag.Parse()

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *caseID != "" {
		err = runDetailMode(store, *caseID, *last, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode
func runListMode(store *state.Store, last int, jsonOut bool) error {
	cases, err := store.ListCases(last)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cases)
	}

	fmt.Printf("%-38s %-20s %s\n", "CASE", "CATEGORY", "UPDATED")
	for _, c := range cases {
		fmt.Printf("%-38s %-20s %s\n", c.CaseID, c.Category, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode
type caseDetail struct {
	Case      claim.CaseState        `json:"case"`
	Claimant  permissions.ActionSet  `json:"claimant_actions"`
	Approver  permissions.ActionSet  `json:"approver_actions"`
	Decisions []logging.Entry        `json:"decisions"`
}

func runDetailMode(store *state.Store, caseID string, last int, jsonOut bool) error {
	cs, err := store.GetCase(caseID)
	if err != nil {
		return err
	}
	decisions, err := logging.RecentDecisions(store.DB(), caseID, last)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(caseDetail{
			Case:      cs,
			Claimant:  permissions.Evaluate(cs, claim.RoleClaimant),
			Approver:  permissions.Evaluate(cs, claim.RoleApprover),
			Decisions: decisions,
		})
	}

	fmt.Printf("case %s  category=%s  change_order_eligible=%v\n",
		cs.CaseID, cs.Category, cs.ChangeOrderEligible)
	if cs.DeadlineFacts != nil {
		fmt.Printf("deadline claim: %d days, %s notice, received %s\n",
			cs.DeadlineFacts.RequestedDays, cs.DeadlineFacts.Notice,
			cs.DeadlineFacts.ReceivedAt.Format("2006-01-02"))
	}

	fmt.Printf("\n%-14s %-20s %-9s %-10s %-9s %s\n",
		"TRACK", "STATUS", "VERSIONS", "RESPONSE", "ACCEPTED", "LOCKED")
	for _, t := range claim.Tracks() {
		ts := cs.TrackState(t)
		result := "-"
		if ts.Result != nil {
			result = string(*ts.Result)
			if !ts.HasCurrentResponse() {
				result += " (stale)"
			}
		}
		fmt.Printf("%-14s %-20s %-9d %-10s %-9v %v\n",
			t, ts.Status, ts.VersionCount, result, ts.Accepted, ts.Locked)
	}

	printActions := func(role claim.Role) {
		as := permissions.Evaluate(cs, role)
		fmt.Printf("\n%s actions:\n", role)
		for _, t := range claim.Tracks() {
			ta := as.ForTrack(t)
			fmt.Printf("  %-14s submit=%v resubmit=%v withdraw=%v respond=%v update=%v accept=%v\n",
				t, ta.CanSubmit, ta.CanResubmit, ta.CanWithdraw,
				ta.CanRespond, ta.CanUpdateResponse, ta.CanAcceptResponse)
		}
		fmt.Printf("  escalate_to_forcing=%v issue_change_order=%v\n",
			as.CanEscalateToForcing, as.CanIssueChangeOrder)
	}
	printActions(claim.RoleClaimant)
	printActions(claim.RoleApprover)

	if len(decisions) > 0 {
		fmt.Printf("\n%-20s %-10s %-24s %s\n", "WHEN", "ACTOR", "ACTION", "OUTCOME")
		for _, d := range decisions {
			fmt.Printf("%-20s %-10s %-24s %s\n",
				d.CreatedAt.Format("2006-01-02 15:04:05"), d.Actor, d.Action, d.Outcome)
		}
	}
	return nil
}

// #endregion detail-mode
