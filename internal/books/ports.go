package books

import (
	"context"

	"feetrack/internal/core"
)

// Ports for inbound table adapters.
type (
	ContactSource interface {
		Contacts(ctx context.Context) ([]core.Contact, error)
	}

	InvoiceSource interface {
		Invoices(ctx context.Context) ([]core.Invoice, error)
	}

	// PaymentSource loads customer payments. The payments table is
	// optional input; a source without one returns an empty slice.
	PaymentSource interface {
		Payments(ctx context.Context) ([]core.Payment, error)
	}
)

// LoadSnapshot assembles the engine input from the three sources.
func LoadSnapshot(ctx context.Context, cs ContactSource, is InvoiceSource, ps PaymentSource, asOf core.Date) (core.Snapshot, error) {
	contacts, err := cs.Contacts(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	invoices, err := is.Invoices(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	payments, err := ps.Payments(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{
		Contacts: contacts,
		Invoices: invoices,
		Payments: payments,
		AsOf:     asOf,
	}, nil
}
