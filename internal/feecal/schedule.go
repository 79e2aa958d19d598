// Package feecal defines the fee calendars: which billing periods each
// school charges, when each period becomes due, and how invoice line items
// map onto periods. The calendar is plain data so a changed fee structure is
// a schedule edit, not a code change.
package feecal

import (
	"fmt"
	"strings"

	"feetrack/internal/core"
)

// Mode selects how a schedule decides which periods are due.
type Mode string

const (
	// ModeTerm judges each period on its own: due once its start date
	// arrives, or earlier when arrears for it already exist.
	ModeTerm Mode = "term"

	// ModeMonthly walks the periods in order and stops at the first one
	// whose start is still in the future. Arrears do not reopen later
	// periods in this mode.
	ModeMonthly Mode = "monthly"
)

// The two schools the default calendar covers, named exactly as the billing
// exports spell them.
const (
	SchoolGlobal  core.School = "Excel Global School"
	SchoolCentral core.School = "Excel Central School"
)

type (
	// Period is one billable stretch of the academic year. A zero Start
	// means the period is due from day one. Match holds the phrases that
	// classify an invoice line item into this period.
	Period struct {
		Key   string
		Start core.Date
		Match []string
	}

	// Schedule is one school's fee calendar. Periods are ordered; both the
	// report columns and the monthly walk follow that order.
	Schedule struct {
		School  core.School
		Code    string
		Mode    Mode
		Periods []Period
	}
)

// Default returns the built-in calendar for the 2025-26 academic year.
func Default() []Schedule {
	return []Schedule{
		{
			School: SchoolGlobal,
			Code:   "EGS",
			Mode:   ModeTerm,
			Periods: []Period{
				{Key: "Initial Fee", Match: []string{"Initial Academic Fee"}},
				{Key: "Term I", Start: core.NewDate(2025, 6, 1), Match: []string{"Term I Fee (June)"}},
				{Key: "Term II", Start: core.NewDate(2025, 9, 1), Match: []string{"Term II Fee (Sept)"}},
				{Key: "Term III", Start: core.NewDate(2026, 1, 1), Match: []string{"Term III Fee (Jan)"}},
			},
		},
		{
			School: SchoolCentral,
			Code:   "ECS",
			Mode:   ModeMonthly,
			Periods: []Period{
				{Key: "Initial Fee", Match: []string{"Initial Academic Fee"}},
				{Key: "Jun-2025", Start: core.NewDate(2025, 6, 1), Match: []string{"June Monthly Fee"}},
				{Key: "Jul-2025", Start: core.NewDate(2025, 7, 1), Match: []string{"July Monthly Fee"}},
				{Key: "Aug-2025", Start: core.NewDate(2025, 8, 1), Match: []string{"August Monthly Fee"}},
				{Key: "Sep-2025", Start: core.NewDate(2025, 9, 1), Match: []string{"September Monthly Fee"}},
				{Key: "Oct-2025", Start: core.NewDate(2025, 10, 1), Match: []string{"October Monthly Fee"}},
				{Key: "Nov-2025", Start: core.NewDate(2025, 11, 1), Match: []string{"November Monthly Fee"}},
				{Key: "Dec-2025", Start: core.NewDate(2025, 12, 1), Match: []string{"December Monthly Fee"}},
				{Key: "Jan-2026", Start: core.NewDate(2026, 1, 1), Match: []string{"January Monthly Fee"}},
				{Key: "Feb-2026", Start: core.NewDate(2026, 2, 1), Match: []string{"February Monthly Fee"}},
				{Key: "Mar-2026", Start: core.NewDate(2026, 3, 1), Match: []string{"March Monthly Fee"}},
			},
		},
	}
}

// ForSchool finds the schedule covering a school.
func ForSchool(schedules []Schedule, school core.School) (Schedule, bool) {
	for _, s := range schedules {
		if s.School == school {
			return s, true
		}
	}
	return Schedule{}, false
}

// Initial returns the schedule's first period, the one the combined
// defaulter report checks. Valid schedules always have at least one period.
func (s Schedule) Initial() Period {
	return s.Periods[0]
}

// DueKeys returns the period keys due as of today, in schedule order.
// arrears is the set of period keys that already have unpaid invoices; in
// term mode it pulls a future period forward, in monthly mode it is ignored.
func (s Schedule) DueKeys(today core.Date, arrears map[string]bool) []string {
	keys := make([]string, 0, len(s.Periods))
	for _, p := range s.Periods {
		switch {
		case p.Start.IsZero():
			keys = append(keys, p.Key)
		case today.OnOrAfter(p.Start):
			keys = append(keys, p.Key)
		case s.Mode == ModeTerm && arrears[p.Key]:
			keys = append(keys, p.Key)
		case s.Mode == ModeMonthly:
			return keys
		}
	}
	return keys
}

// Classify maps an invoice line item onto a period key. The first period
// with a matching phrase wins; unmatched items report ok=false and drop out
// of the fee analysis.
func (s Schedule) Classify(itemName string) (string, bool) {
	if itemName == "" {
		return "", false
	}
	for _, p := range s.Periods {
		for _, m := range p.Match {
			if strings.Contains(itemName, m) {
				return p.Key, true
			}
		}
	}
	return "", false
}

// Validate checks a schedule for the mistakes a hand-edited override file
// tends to contain.
func (s Schedule) Validate() error {
	if s.School == "" {
		return fmt.Errorf("schedule: empty school name")
	}
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("schedule %s: empty code", s.School)
	}
	if s.Mode != ModeTerm && s.Mode != ModeMonthly {
		return fmt.Errorf("schedule %s: unknown mode %q", s.School, s.Mode)
	}
	if len(s.Periods) == 0 {
		return fmt.Errorf("schedule %s: no periods", s.School)
	}
	seen := make(map[string]bool, len(s.Periods))
	for _, p := range s.Periods {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("schedule %s: period with empty key", s.School)
		}
		if seen[p.Key] {
			return fmt.Errorf("schedule %s: duplicate period key %q", s.School, p.Key)
		}
		seen[p.Key] = true
		if len(p.Match) == 0 {
			return fmt.Errorf("schedule %s: period %q has no match phrases", s.School, p.Key)
		}
	}
	return nil
}
