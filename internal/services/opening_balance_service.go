package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"feetrack/internal/core"
	"feetrack/internal/feecal"
)

// OpeningBalanceService tracks pre-system dues: opening balances carried on
// contacts and the payments recorded against them, plus the first-period
// fee check that feeds the combined defaulter list.
type OpeningBalanceService struct {
	schedules []feecal.Schedule
}

func NewOpeningBalanceService(schedules []feecal.Schedule) *OpeningBalanceService {
	return &OpeningBalanceService{schedules: schedules}
}

// Statuses returns every contact still owing part of an opening balance.
// Credit and zero balances never appear; neither do balances fully covered
// by opening-balance payments.
func (s *OpeningBalanceService) Statuses(snap core.Snapshot) []core.OpeningBalanceStatus {
	paid := make(map[string]decimal.Decimal)
	for _, p := range snap.Payments {
		if !p.IsOpeningBalance() {
			continue
		}
		paid[p.CustomerID] = paid[p.CustomerID].Add(p.Amount)
	}

	var out []core.OpeningBalanceStatus
	for _, c := range snap.Contacts {
		if !c.OpeningBalance.IsPositive() {
			continue
		}
		remaining := c.OpeningBalance.Sub(paid[c.ContactID])
		if !remaining.IsPositive() {
			continue
		}
		out = append(out, core.OpeningBalanceStatus{
			CustomerID:  c.ContactID,
			StudentName: c.StudentName(),
			School:      c.School,
			Grade:       c.Grade,
			Section:     sectionOrDash(c.Section),
			Opening:     c.OpeningBalance,
			Paid:        paid[c.ContactID],
			Remaining:   remaining,
		})
	}
	return out
}

// InitialFeeDefaulters lists students whose first-period fee has no settled
// invoice. Unlike the per-period analysis, a zero summed balance does not
// clear a student here; only a Closed or Paid invoice does.
func (s *OpeningBalanceService) InitialFeeDefaulters(snap core.Snapshot) []core.CombinedDefaulter {
	contacts := contactIndex(snap.Contacts)

	var out []core.CombinedDefaulter
	for _, sched := range s.schedules {
		initial := sched.Initial().Key

		type groupKey struct {
			customer, grade, section string
		}
		seen := make(map[groupKey]bool)
		var groups []groupKey
		flagged := make(map[string]bool)
		for _, inv := range snap.Invoices {
			if inv.School != sched.School || !isDefaulterInvoice(inv, snap.AsOf) {
				continue
			}
			if key, ok := sched.Classify(inv.ItemName); !ok || key != initial {
				continue
			}
			k := groupKey{inv.CustomerID, inv.Grade, sectionOrDash(inv.Section)}
			if !seen[k] {
				seen[k] = true
				groups = append(groups, k)
			}
			flagged[inv.CustomerID] = true
		}
		if len(groups) == 0 {
			continue
		}

		billed := make(map[string]bool)
		settled := make(map[string]bool)
		for _, inv := range snap.Invoices {
			if inv.School != sched.School || !flagged[inv.CustomerID] {
				continue
			}
			if key, ok := sched.Classify(inv.ItemName); !ok || key != initial {
				continue
			}
			billed[inv.CustomerID] = true
			if inv.Status.IsSettled() {
				settled[inv.CustomerID] = true
			}
		}

		sort.Slice(groups, func(i, j int) bool {
			a, b := groups[i], groups[j]
			if a.customer != b.customer {
				return a.customer < b.customer
			}
			if a.grade != b.grade {
				return a.grade < b.grade
			}
			return a.section < b.section
		})
		for _, k := range groups {
			if !billed[k.customer] || settled[k.customer] {
				continue
			}
			d := core.CombinedDefaulter{
				CustomerID: k.customer,
				School:     sched.School,
				Grade:      k.grade,
				Section:    k.section,
				Status:     core.StatusInitialFeeNotPaid,
			}
			if c, ok := contacts[k.customer]; ok {
				d.StudentName = c.StudentName()
			}
			out = append(out, d)
		}
	}
	return out
}

// CombinedDefaulters merges the initial-fee list with the opening-balance
// list, one row per student. A student on both lists keeps the initial-fee
// entry.
func (s *OpeningBalanceService) CombinedDefaulters(snap core.Snapshot) []core.CombinedDefaulter {
	merged := s.InitialFeeDefaulters(snap)
	for _, ob := range s.Statuses(snap) {
		merged = append(merged, core.CombinedDefaulter{
			CustomerID:  ob.CustomerID,
			StudentName: ob.StudentName,
			School:      ob.School,
			Grade:       ob.Grade,
			Section:     ob.Section,
			Status:      core.StatusOpeningBalanceOwing,
			Opening:     ob.Opening,
			Paid:        ob.Paid,
			Remaining:   ob.Remaining,
		})
	}

	seen := make(map[string]bool, len(merged))
	out := make([]core.CombinedDefaulter, 0, len(merged))
	for _, d := range merged {
		if seen[d.CustomerID] {
			continue
		}
		seen[d.CustomerID] = true
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.School != b.School {
			return a.School < b.School
		}
		if a.Grade != b.Grade {
			return a.Grade < b.Grade
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.StudentName < b.StudentName
	})
	return out
}
