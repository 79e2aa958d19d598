// Package file loads the billing exports from local CSV or XLSX files.
package file

import (
	"context"

	"feetrack/internal/books"
	"feetrack/internal/core"
)

// Source reads the three export tables from disk. PaymentsPath may be
// empty; opening-balance analysis then runs against an empty payments table.
type Source struct {
	ContactsPath string
	InvoicesPath string
	PaymentsPath string
}

func (s Source) Contacts(_ context.Context) ([]core.Contact, error) {
	rows, err := books.ReadGridFile(s.ContactsPath)
	if err != nil {
		return nil, err
	}
	return books.ParseContacts(rows)
}

func (s Source) Invoices(_ context.Context) ([]core.Invoice, error) {
	rows, err := books.ReadGridFile(s.InvoicesPath)
	if err != nil {
		return nil, err
	}
	return books.ParseInvoices(rows)
}

func (s Source) Payments(_ context.Context) ([]core.Payment, error) {
	if s.PaymentsPath == "" {
		return nil, nil
	}
	rows, err := books.ReadGridFile(s.PaymentsPath)
	if err != nil {
		return nil, err
	}
	return books.ParsePayments(rows)
}
