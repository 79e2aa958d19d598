package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"feetrack/internal/core"
	"feetrack/internal/feecal"
)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func egsSchedule(t *testing.T) feecal.Schedule {
	t.Helper()
	s, ok := feecal.ForSchool(feecal.Default(), feecal.SchoolGlobal)
	if !ok {
		t.Fatalf("missing default EGS schedule")
	}
	return s
}

func ecsSchedule(t *testing.T) feecal.Schedule {
	t.Helper()
	s, ok := feecal.ForSchool(feecal.Default(), feecal.SchoolCentral)
	if !ok {
		t.Fatalf("missing default ECS schedule")
	}
	return s
}

func invoice(customer, grade, section, item string, status core.InvoiceStatus, balance int64) core.Invoice {
	return core.Invoice{
		InvoiceNumber: "INV-" + customer + "-" + item,
		CustomerID:    customer,
		School:        feecal.SchoolGlobal,
		Grade:         grade,
		Section:       section,
		ItemName:      item,
		Status:        status,
		Balance:       amount(balance),
	}
}

func TestReportOverdueTermShowsAmount(t *testing.T) {
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Contacts: []core.Contact{
			{ContactID: "C1", FirstName: "Asha", LastName: "Rao", School: feecal.SchoolGlobal, EnrollmentCode: "EGS-0042"},
		},
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 5000),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))

	wantKeys := []string{"Initial Fee", "Term I", "Term II"}
	if len(report.DueKeys) != len(wantKeys) {
		t.Fatalf("due keys expected %v, got %v", wantKeys, report.DueKeys)
	}
	if len(report.Students) != 1 {
		t.Fatalf("expected 1 defaulter, got %d", len(report.Students))
	}
	st := report.Students[0]
	if st.StudentName != "Asha Rao" || st.EnrollmentCode != "EGS-0042" || st.Section != "A" {
		t.Fatalf("unexpected student row: %+v", st)
	}
	termI := st.Periods["Term I"]
	if termI.State != core.PeriodOverdue || !termI.Amount.Equal(amount(5000)) {
		t.Fatalf("Term I expected overdue 5000, got %+v", termI)
	}
	if st.Periods["Initial Fee"].State != core.PeriodUnbilled {
		t.Fatalf("unbilled period expected, got %+v", st.Periods["Initial Fee"])
	}
	if !st.Total.Equal(amount(5000)) {
		t.Fatalf("total expected 5000, got %s", st.Total)
	}
}

func TestReportClosedInvoiceMarksPeriodPaid(t *testing.T) {
	initialClosed := invoice("C1", "Grade 5", "A", "Initial Academic Fee", core.StatusClosed, 0)
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 5000),
			initialClosed,
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))

	st := report.Students[0]
	if st.Periods["Initial Fee"].State != core.PeriodPaid {
		t.Fatalf("closed initial fee expected paid, got %+v", st.Periods["Initial Fee"])
	}
	if !st.Total.Equal(amount(5000)) {
		t.Fatalf("paid period must not contribute, total %s", st.Total)
	}
}

func TestReportPartiallyPaidDueDateRule(t *testing.T) {
	svc := NewDefaulterService(feecal.Default())
	asOf := core.NewDate(2025, 10, 1)

	tests := []struct {
		name string
		due  core.Date
		want int
	}{
		{"due tomorrow stays out", core.NewDate(2025, 10, 2), 0},
		{"due today stays out", core.NewDate(2025, 10, 1), 0},
		{"past due counts", core.NewDate(2025, 9, 30), 1},
		{"missing due date stays out", core.Date{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusPartiallyPaid, 3000)
			inv.DueDate = tt.due
			snap := core.Snapshot{AsOf: asOf, Invoices: []core.Invoice{inv}}
			report := svc.Report(snap, egsSchedule(t))
			if len(report.Students) != tt.want {
				t.Errorf("expected %d defaulters, got %d", tt.want, len(report.Students))
			}
		})
	}
}

func TestReportUnclassifiableItemsDrop(t *testing.T) {
	// Flagged rows outside the fee structure never reach a due column, so
	// a student owing only such items owes nothing reportable.
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Transport Fee June", core.StatusOverdue, 2000),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	if len(report.Students) != 0 {
		t.Fatalf("expected no defaulters, got %+v", report.Students)
	}
}

func TestReportBlankSectionGroupsAsGeneral(t *testing.T) {
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "", "Term I Fee (June)", core.StatusOverdue, 1000),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	if len(report.Students) != 1 || report.Students[0].Section != core.SectionGeneral {
		t.Fatalf("blank section expected %q, got %+v", core.SectionGeneral, report.Students)
	}
}

func TestReportSumsInvoicesPerPeriod(t *testing.T) {
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 3000),
			invoice("C1", "Grade 5", "A", "Term I Fee (June) - Books", core.StatusOverdue, 1500),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	st := report.Students[0]
	if !st.Periods["Term I"].Amount.Equal(amount(4500)) {
		t.Fatalf("Term I expected 4500, got %s", st.Periods["Term I"].Amount)
	}
}

func TestReportArrearsReopenFutureTerm(t *testing.T) {
	// Term III starts 2026-01-01, but an overdue Term III invoice forces
	// the column open early.
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 7, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term III Fee (Jan)", core.StatusOverdue, 7000),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))

	found := false
	for _, k := range report.DueKeys {
		if k == "Term III" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Term III should be due early, keys %v", report.DueKeys)
	}
	if !report.Students[0].Periods["Term III"].Amount.Equal(amount(7000)) {
		t.Fatalf("Term III expected 7000, got %+v", report.Students[0].Periods["Term III"])
	}
}

func TestReportMonthlyWalkIgnoresFutureArrears(t *testing.T) {
	inv := invoice("C2", "LKG", "A", "September Monthly Fee", core.StatusOverdue, 800)
	inv.School = feecal.SchoolCentral
	snap := core.Snapshot{
		AsOf:     core.NewDate(2025, 7, 15),
		Invoices: []core.Invoice{inv},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, ecsSchedule(t))

	want := []string{"Initial Fee", "Jun-2025", "Jul-2025"}
	if len(report.DueKeys) != len(want) {
		t.Fatalf("monthly walk must stop at August, got %v", report.DueKeys)
	}
	for i, k := range want {
		if report.DueKeys[i] != k {
			t.Fatalf("expected keys %v, got %v", want, report.DueKeys)
		}
	}
	// The September arrears land on no due column, so the student owes
	// nothing reportable yet.
	if len(report.Students) != 0 {
		t.Fatalf("expected no defaulters, got %+v", report.Students)
	}
}

func TestReportNotYetDueBilling(t *testing.T) {
	// An open invoice for a due period that is neither flagged nor settled
	// leaves the column empty without clearing it as paid.
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 5000),
			{
				CustomerID: "C1", School: feecal.SchoolGlobal, Grade: "Grade 5", Section: "A",
				ItemName: "Term II Fee (Sept)", Status: "Sent", Balance: amount(4500),
				DueDate: core.NewDate(2025, 10, 20),
			},
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	st := report.Students[0]
	if st.Periods["Term II"].State != core.PeriodNotYetDue {
		t.Fatalf("open future invoice expected not-yet-due, got %+v", st.Periods["Term II"])
	}
	if !st.Total.Equal(amount(5000)) {
		t.Fatalf("total expected 5000, got %s", st.Total)
	}
}

func TestReportRowsSortedByCustomer(t *testing.T) {
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C9", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 100),
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 200),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	if len(report.Students) != 2 || report.Students[0].CustomerID != "C1" {
		t.Fatalf("expected C1 first, got %+v", report.Students)
	}
}

func TestReportSeparatesGradeSectionGroups(t *testing.T) {
	// The same customer billed under two sections stays two rows.
	snap := core.Snapshot{
		AsOf: core.NewDate(2025, 10, 1),
		Invoices: []core.Invoice{
			invoice("C1", "Grade 5", "A", "Term I Fee (June)", core.StatusOverdue, 100),
			invoice("C1", "Grade 5", "B", "Term I Fee (June)", core.StatusOverdue, 200),
		},
	}
	report := NewDefaulterService(feecal.Default()).Report(snap, egsSchedule(t))
	if len(report.Students) != 2 {
		t.Fatalf("expected 2 rows, got %+v", report.Students)
	}
	if report.Students[0].Section != "A" || report.Students[1].Section != "B" {
		t.Fatalf("sections expected A then B, got %+v", report.Students)
	}
}
