package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
	}{
		{"2025-06-01", NewDate(2025, 6, 1)},
		{"2025-06-01 00:00:00", NewDate(2025, 6, 1)},
		{"01/07/2025", NewDate(2025, 7, 1)},
		{"02-Jan-2026", NewDate(2026, 1, 2)},
		{" 2025-09-15 ", NewDate(2025, 9, 15)},
		{"", Date{}},
		{"not a date", Date{}},
	}
	for _, tc := range cases {
		got := ParseDate(tc.in)
		if !got.Equal(tc.want.Time) && !(got.IsZero() && tc.want.IsZero()) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestDateBefore(t *testing.T) {
	today := NewDate(2025, 9, 20)
	if !NewDate(2025, 9, 19).Before(today) {
		t.Fatalf("yesterday should be before today")
	}
	if NewDate(2025, 9, 20).Before(today) {
		t.Fatalf("same day is not before")
	}
	// A missing due date must never look past due.
	if (Date{}).Before(today) {
		t.Fatalf("zero date must not be before anything")
	}
	if today.Before(Date{}) {
		t.Fatalf("nothing is before a zero date")
	}
}

func TestDateOnOrAfter(t *testing.T) {
	start := NewDate(2025, 9, 1)
	if !NewDate(2025, 9, 1).OnOrAfter(start) {
		t.Fatalf("start day itself counts")
	}
	if NewDate(2025, 8, 31).OnOrAfter(start) {
		t.Fatalf("day before start must not count")
	}
	if (Date{}).OnOrAfter(start) {
		t.Fatalf("zero date never reaches a start")
	}
}

func TestInvoiceStatusPredicates(t *testing.T) {
	if !StatusOverdue.IsOverdue() || StatusPaid.IsOverdue() {
		t.Fatalf("IsOverdue misclassifies")
	}
	if !StatusPartiallyPaid.IsPartiallyPaid() {
		t.Fatalf("IsPartiallyPaid misclassifies")
	}
	if !StatusClosed.IsSettled() || !StatusPaid.IsSettled() {
		t.Fatalf("Closed and Paid are both settled")
	}
	if StatusOverdue.IsSettled() || InvoiceStatus("Draft").IsSettled() {
		t.Fatalf("IsSettled misclassifies")
	}
}

func TestStudentName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Asha", "Rao", "Asha Rao"},
		{" Asha ", " Rao ", "Asha Rao"},
		{"Asha", "", "Asha"},
		{"", "Rao", "Rao"},
		{"", "", ""},
	}
	for _, tc := range cases {
		c := Contact{FirstName: tc.first, LastName: tc.last}
		if got := c.StudentName(); got != tc.want {
			t.Fatalf("(%q,%q) expected %q, got %q", tc.first, tc.last, tc.want, got)
		}
	}
}

func TestPeriodStatusOutstanding(t *testing.T) {
	due := Overdue(decimal.NewFromInt(4500))
	if !due.Outstanding().Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("overdue period must carry its amount")
	}
	if !due.IsDefaulted() {
		t.Fatalf("positive overdue is defaulted")
	}
	for _, p := range []PeriodStatus{
		{State: PeriodUnbilled},
		{State: PeriodNotYetDue},
		{State: PeriodPaid},
	} {
		if !p.Outstanding().IsZero() {
			t.Fatalf("state %v must not contribute to the total", p.State)
		}
		if p.IsDefaulted() {
			t.Fatalf("state %v is not a default", p.State)
		}
	}
}

func TestSchoolEnrollment(t *testing.T) {
	snap := Snapshot{Contacts: []Contact{
		{ContactID: "C1", School: "Excel Global School"},
		{ContactID: "C1", School: "Excel Global School"}, // duplicate row
		{ContactID: "C2", School: "Excel Global School"},
		{ContactID: "C3", School: "Excel Central School"},
	}}
	if got := snap.SchoolEnrollment("Excel Global School"); got != 2 {
		t.Fatalf("expected 2 distinct students, got %d", got)
	}
	if got := snap.SchoolEnrollment("Excel Central School"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
