package core

import "github.com/shopspring/decimal"

// PeriodState says where one fee period stands for one student group.
type PeriodState int

const (
	// PeriodUnbilled: no invoice for this period exists for the customer.
	PeriodUnbilled PeriodState = iota
	// PeriodNotYetDue: billed, open, but not flagged as owing anything yet.
	PeriodNotYetDue
	// PeriodPaid: every invoice for the period is settled or carries no balance.
	PeriodPaid
	// PeriodOverdue: the period owes the carried amount.
	PeriodOverdue
)

type (
	// PeriodStatus is the standing of a single fee period. Amount is set
	// only when State is PeriodOverdue.
	PeriodStatus struct {
		State  PeriodState
		Amount decimal.Decimal
	}

	// StudentFeeSummary is one defaulter row: a student group keyed by
	// customer, grade and section, with a status per due period.
	StudentFeeSummary struct {
		CustomerID     string
		StudentName    string
		EnrollmentCode string
		School         School
		Grade          string
		Section        string
		Periods        map[string]PeriodStatus // keyed by period key
		Total          decimal.Decimal
	}

	// OpeningBalanceStatus is one contact's opening-balance position.
	OpeningBalanceStatus struct {
		CustomerID  string
		StudentName string
		School      School
		Grade       string
		Section     string
		Opening     decimal.Decimal
		Paid        decimal.Decimal
		Remaining   decimal.Decimal
	}

	// CombinedDefaulter is one row of the cross-school defaulter list that
	// merges unpaid-initial-fee students with open opening balances.
	CombinedDefaulter struct {
		CustomerID  string
		StudentName string
		School      School
		Grade       string
		Section     string
		Status      string
		Opening     decimal.Decimal
		Paid        decimal.Decimal
		Remaining   decimal.Decimal
	}

	// SchoolStats is the headline summary shown after a run.
	SchoolStats struct {
		School         School
		TotalStudents  int
		Defaulters     int
		Outstanding    decimal.Decimal
		GradesAffected int
	}
)

// Combined-list status labels.
const (
	StatusInitialFeeNotPaid   = "Initial Fee Not Paid"
	StatusOpeningBalanceOwing = "Opening Balance Not Fully Paid"
)

// Overdue builds an overdue status carrying amount.
func Overdue(amount decimal.Decimal) PeriodStatus {
	return PeriodStatus{State: PeriodOverdue, Amount: amount}
}

// Outstanding is the amount this period contributes to the student's total.
// Only overdue periods owe anything.
func (p PeriodStatus) Outstanding() decimal.Decimal {
	if p.State == PeriodOverdue {
		return p.Amount
	}
	return decimal.Zero
}

// IsDefaulted reports whether the period counts against the student.
func (p PeriodStatus) IsDefaulted() bool {
	return p.State == PeriodOverdue && p.Amount.IsPositive()
}
