// Package services implements the defaulter determination pipeline: the
// arrears filter, fee-period classification, per-student aggregation, and
// the run orchestration on top of them.
package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"feetrack/internal/core"
	"feetrack/internal/feecal"
)

// DefaulterService computes per-student fee standings for the schools in
// its calendar.
type DefaulterService struct {
	schedules []feecal.Schedule
}

func NewDefaulterService(schedules []feecal.Schedule) *DefaulterService {
	return &DefaulterService{schedules: schedules}
}

// SchoolReport is the defaulter set for one school, with the due period
// keys that become the report columns.
type SchoolReport struct {
	Schedule feecal.Schedule
	DueKeys  []string
	Students []core.StudentFeeSummary
}

// classified pairs an invoice with the fee period its line item resolved
// to. feeType stays empty for items outside the fee structure; those rows
// never match a due column.
type classified struct {
	core.Invoice
	feeType string
}

// isDefaulterInvoice applies the arrears filter. Overdue rows are trusted
// as flagged by the billing system; PartiallyPaid rows count only once
// their due date has passed. A missing due date never counts as past.
func isDefaulterInvoice(inv core.Invoice, today core.Date) bool {
	if inv.Status.IsOverdue() {
		return true
	}
	return inv.Status.IsPartiallyPaid() && inv.DueDate.Before(today)
}

func sectionOrGeneral(section string) string {
	if strings.TrimSpace(section) == "" {
		return core.SectionGeneral
	}
	return section
}

func sectionOrDash(section string) string {
	if strings.TrimSpace(section) == "" {
		return core.SectionDash
	}
	return section
}

func contactIndex(contacts []core.Contact) map[string]core.Contact {
	idx := make(map[string]core.Contact, len(contacts))
	for _, c := range contacts {
		if _, ok := idx[c.ContactID]; !ok {
			idx[c.ContactID] = c
		}
	}
	return idx
}

// Report computes the defaulter rows for one school.
func (s *DefaulterService) Report(snap core.Snapshot, sched feecal.Schedule) SchoolReport {
	// Rows that flag a student: overdue or past-due partially paid, for
	// this school only.
	var flaggedRows []classified
	arrears := make(map[string]bool)
	for _, inv := range snap.Invoices {
		if inv.School != sched.School || !isDefaulterInvoice(inv, snap.AsOf) {
			continue
		}
		row := classified{Invoice: inv}
		if key, ok := sched.Classify(inv.ItemName); ok {
			row.feeType = key
			arrears[key] = true
		}
		flaggedRows = append(flaggedRows, row)
	}

	report := SchoolReport{
		Schedule: sched,
		DueKeys:  sched.DueKeys(snap.AsOf, arrears),
	}
	if len(flaggedRows) == 0 {
		return report
	}

	// Every invoice of a flagged student, any status. Payment checks look
	// at the full billing history, not just the flagged rows.
	flagged := make(map[string]bool)
	for _, row := range flaggedRows {
		flagged[row.CustomerID] = true
	}
	historyByCustomer := make(map[string][]classified)
	for _, inv := range snap.Invoices {
		if inv.School != sched.School || !flagged[inv.CustomerID] {
			continue
		}
		row := classified{Invoice: inv}
		if key, ok := sched.Classify(inv.ItemName); ok {
			row.feeType = key
		}
		historyByCustomer[inv.CustomerID] = append(historyByCustomer[inv.CustomerID], row)
	}

	contacts := contactIndex(snap.Contacts)

	type groupKey struct {
		customer, grade, section string
	}
	groups := make(map[groupKey][]classified)
	for _, row := range flaggedRows {
		k := groupKey{row.CustomerID, row.Grade, sectionOrGeneral(row.Section)}
		groups[k] = append(groups[k], row)
	}
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.customer != b.customer {
			return a.customer < b.customer
		}
		if a.grade != b.grade {
			return a.grade < b.grade
		}
		return a.section < b.section
	})

	for _, k := range keys {
		summary := core.StudentFeeSummary{
			CustomerID: k.customer,
			School:     sched.School,
			Grade:      k.grade,
			Section:    k.section,
			Periods:    make(map[string]core.PeriodStatus, len(report.DueKeys)),
		}
		if c, ok := contacts[k.customer]; ok {
			summary.StudentName = c.StudentName()
			summary.EnrollmentCode = c.EnrollmentCode
		}

		total := decimal.Zero
		for _, key := range report.DueKeys {
			status := periodStatus(key, groups[k], historyByCustomer[k.customer])
			summary.Periods[key] = status
			total = total.Add(status.Outstanding())
		}
		summary.Total = total

		// Every emitted row owes something on at least one due period.
		if total.IsZero() {
			continue
		}
		report.Students = append(report.Students, summary)
	}
	return report
}

// periodStatus decides one due column for one student group. group holds
// the student's flagged rows, history every invoice of theirs for the
// school.
func periodStatus(key string, group, history []classified) core.PeriodStatus {
	var billed []classified
	for _, row := range history {
		if row.feeType == key {
			billed = append(billed, row)
		}
	}
	if len(billed) == 0 {
		return core.PeriodStatus{State: core.PeriodUnbilled}
	}

	overdue := decimal.Zero
	for _, row := range group {
		if row.feeType == key {
			overdue = overdue.Add(row.Balance)
		}
	}
	if overdue.IsPositive() {
		return core.Overdue(overdue)
	}

	balance := decimal.Zero
	settled := false
	for _, row := range billed {
		balance = balance.Add(row.Balance)
		if row.Status.IsSettled() {
			settled = true
		}
	}
	if settled || balance.IsZero() {
		return core.PeriodStatus{State: core.PeriodPaid}
	}
	return core.PeriodStatus{State: core.PeriodNotYetDue}
}
