// Package core defines the row types loaded from the billing exports and the
// derived records produced by the extraction engine. Everything here is a
// plain value: a run builds one Snapshot and passes it through the pipeline
// stages without ever mutating it.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOverdue       InvoiceStatus = "Overdue"
	StatusPartiallyPaid InvoiceStatus = "PartiallyPaid"
	StatusClosed        InvoiceStatus = "Closed"
	StatusPaid          InvoiceStatus = "Paid"
)

// Absent-section sentinels. The per-period reports and the opening-balance
// report use different defaults and downstream grouping depends on the exact
// literals, so they are never unified.
const (
	SectionGeneral = "General"
	SectionDash    = "-"
)

// OpeningBalanceRef marks a payment row as an opening-balance payment rather
// than a payment against a regular invoice. Matched exactly, no trimming.
const OpeningBalanceRef = "Customer opening balance"

type (
	// School is the school name exactly as it appears in the export tables.
	School string

	// InvoiceStatus is the billing system's status string. Only the four
	// constants above carry meaning for defaulting; other values pass
	// through untouched.
	InvoiceStatus string

	// Date is a calendar date at midnight UTC. The zero value marks a
	// missing or unparseable date.
	Date struct {
		time.Time
	}

	// Contact is one student record from the contacts export.
	Contact struct {
		ContactID      string
		FirstName      string
		LastName       string
		School         School
		Grade          string
		Section        string
		OpeningBalance decimal.Decimal
		EnrollmentCode string
	}

	// Invoice is one billed fee instance from the invoices export.
	Invoice struct {
		InvoiceNumber string
		CustomerID    string
		School        School
		Grade         string
		Section       string
		ItemName      string
		Status        InvoiceStatus
		Balance       decimal.Decimal
		Total         decimal.Decimal
		DueDate       Date
		InvoiceDate   Date
	}

	// Payment is one row from the customer-payments export. Only rows whose
	// InvoiceRef equals OpeningBalanceRef matter to the engine.
	Payment struct {
		CustomerID   string
		InvoiceRef   string
		Amount       decimal.Decimal
		CustomerName string
	}

	// Snapshot is the input to a single extraction run: the three tables
	// plus the date the run treats as today.
	Snapshot struct {
		Contacts []Contact
		Invoices []Invoice
		Payments []Payment
		AsOf     Date
	}
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyTable    = errors.New("empty table")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownSchool = errors.New("unknown school")
)

// IsOverdue reports whether the status is the authoritative overdue marker.
func (s InvoiceStatus) IsOverdue() bool { return s == StatusOverdue }

// IsPartiallyPaid reports whether the status marks a partially paid invoice.
func (s InvoiceStatus) IsPartiallyPaid() bool { return s == StatusPartiallyPaid }

// IsSettled reports whether the status marks a fully settled invoice.
func (s InvoiceStatus) IsSettled() bool { return s == StatusClosed || s == StatusPaid }

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// dateLayouts are the formats seen across billing exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2 Jan 2006",
	time.RFC3339,
}

// ParseDate parses a date cell. Unparseable or empty cells coerce to the
// zero Date, the missing marker.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

// Before reports whether d is strictly before other. A zero date is never
// before anything: an invoice with a missing due date must not pass a
// past-due check by accident.
func (d Date) Before(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	return d.Time.Before(other.Time)
}

// OnOrAfter reports whether d is on or after other.
func (d Date) OnOrAfter(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	return !d.Time.Before(other.Time)
}

// StudentName joins first and last name the way the reports print it.
func (c Contact) StudentName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// IsOpeningBalance reports whether the payment settles opening balance.
func (p Payment) IsOpeningBalance() bool { return p.InvoiceRef == OpeningBalanceRef }

// SchoolEnrollment counts distinct contact IDs for a school. Enrollment
// totals come from the contacts table, never from defaulter row counts.
func (s Snapshot) SchoolEnrollment(school School) int {
	seen := make(map[string]struct{})
	for _, c := range s.Contacts {
		if c.School != school {
			continue
		}
		seen[c.ContactID] = struct{}{}
	}
	return len(seen)
}
