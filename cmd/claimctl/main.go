// claimctl applies claim lifecycle actions through the orchestrator:
// submissions, responses, acceptances, withdrawals with their cascade,
// and the four-gate deadline adjudication.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/khjohns/unified-timeline-sub004/internal/claim"
	"github.com/khjohns/unified-timeline-sub004/internal/config"
	"github.com/khjohns/unified-timeline-sub004/internal/deadline"
	"github.com/khjohns/unified-timeline-sub004/internal/orchestrator"
	"github.com/khjohns/unified-timeline-sub004/internal/state"
)

const usage = `usage: claimctl <command> [flags]

commands:
  actions             show the capability map for a role
  submit              submit a draft track
  resubmit            record a new claimant version
  withdraw            withdraw a track and its cascade
  respond             record an approver response on a track
  update-response     replace the approver's current response
  accept              accept the approver's current response
  submit-deadline     submit the deadline claim facts
  respond-deadline    run the four-gate deadline adjudication
  issue-change-order  issue a change order, locking the liability basis
`

// #region main
func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(cfg, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "path to claims.db")
	caseID := fs.String("case", "", "case ID")
	track := fs.String("track", "", "track: liability | compensation | deadline")
	role := fs.String("role", cfg.Role, "acting role: claimant | approver")
	result := fs.String("result", "", "response result: approved | rejected | partially_approved | waived")

	// Deadline claim facts.
	days := fs.Int("days", 0, "requested day count")
	notice := fs.String("notice", string(claim.NoticeSpecified), "notice: neutral | specified | force_majeure")
	received := fs.String("received", "", "claim received date (YYYY-MM-DD)")

	// Deadline adjudication gates. Gates 1 and 2 are tri-state: unset
	// flags stay unanswered and the evaluator refuses to aggregate.
	timely := fs.String("timely", "", "gate 1: notice timely (true|false)")
	requestSpec := fs.Bool("request-specification", false, "gate 1: request a specified claim (neutral notice)")
	specDeadline := fs.String("specification-deadline", "", "gate 1: deadline for the specified claim (YYYY-MM-DD)")
	hindrance := fs.String("hindrance", "", "gate 2: hindrance occurred (true|false)")
	approvedDays := fs.String("approved-days", "", "gate 3: conceded day count")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *caseID == "" {
		return fmt.Errorf("--case is required")
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	o := orchestrator.New(store)

	switch cmd {
	case "actions":
		as, err := o.Actions(*caseID, claim.Role(*role))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(as)

	case "submit":
		return report(o.Submit(*caseID, claim.Track(*track)), "submitted %s", *track)

	case "resubmit":
		return report(o.Resubmit(*caseID, claim.Track(*track)), "resubmitted %s", *track)

	case "withdraw":
		out, err := o.Withdraw(*caseID, claim.Track(*track))
		if err != nil {
			return err
		}
		if out.Reason != "" {
			fmt.Printf("withdrew %v (%s)\n", out.Withdrawn, out.Reason)
		} else {
			fmt.Printf("withdrew %v\n", out.Withdrawn)
		}
		return nil

	case "respond":
		return report(o.Respond(*caseID, claim.Track(*track), claim.Result(*result)),
			"responded %s on %s", *result, *track)

	case "update-response":
		return report(o.UpdateResponse(*caseID, claim.Track(*track), claim.Result(*result)),
			"updated response to %s on %s", *result, *track)

	case "accept":
		return report(o.Accept(*caseID, claim.Track(*track)), "accepted response on %s", *track)

	case "submit-deadline":
		facts := claim.DeadlineFacts{
			RequestedDays: *days,
			Notice:        claim.NoticeKind(*notice),
		}
		if *received != "" {
			t, err := time.Parse("2006-01-02", *received)
			if err != nil {
				return fmt.Errorf("parse received date: %w", err)
			}
			facts.ReceivedAt = t
		}
		return report(o.SubmitDeadlineClaim(*caseID, facts),
			"submitted deadline claim: %d days, %s notice", *days, *notice)

	case "respond-deadline":
		a := deadline.Assessment{RequestSpecification: *requestSpec}
		if a.NoticeTimely, err = parseTristate(*timely, "timely"); err != nil {
			return err
		}
		if a.HindranceOccurred, err = parseTristate(*hindrance, "hindrance"); err != nil {
			return err
		}
		if *specDeadline != "" {
			t, err := time.Parse("2006-01-02", *specDeadline)
			if err != nil {
				return fmt.Errorf("parse specification-deadline: %w", err)
			}
			a.SpecificationDeadline = &t
		}
		if *approvedDays != "" {
			n, err := strconv.Atoi(*approvedDays)
			if err != nil {
				return fmt.Errorf("parse approved-days: %w", err)
			}
			a.ApprovedDays = &n
		}
		ev, err := o.RespondDeadline(*caseID, a)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)

	case "issue-change-order":
		return report(o.IssueChangeOrder(*caseID), "change order issued, liability locked")
	}

	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

// #endregion main

// #region helpers
func report(err error, format string, args ...interface{}) error {
	if err != nil {
		return err
	}
	fmt.Printf(format+"\n", args...)
	return nil
}

func parseTristate(s, name string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}

// #endregion helpers
