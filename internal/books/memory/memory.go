// Package memory holds already-parsed export tables. The upload handlers
// build one Store per request; tests build them from literals.
package memory

import (
	"context"
	"sync"

	"feetrack/internal/books"
	"feetrack/internal/core"
)

type Store struct {
	mu       sync.Mutex
	contacts []core.Contact
	invoices []core.Invoice
	payments []core.Payment
}

func New(contacts []core.Contact, invoices []core.Invoice, payments []core.Payment) *Store {
	return &Store{contacts: contacts, invoices: invoices, payments: payments}
}

// FromGrids parses raw grids into a store. paymentRows may be nil when no
// payments table was provided.
func FromGrids(contactRows, invoiceRows, paymentRows [][]string) (*Store, error) {
	contacts, err := books.ParseContacts(contactRows)
	if err != nil {
		return nil, err
	}
	invoices, err := books.ParseInvoices(invoiceRows)
	if err != nil {
		return nil, err
	}
	var payments []core.Payment
	if len(paymentRows) > 0 {
		if payments, err = books.ParsePayments(paymentRows); err != nil {
			return nil, err
		}
	}
	return New(contacts, invoices, payments), nil
}

func (s *Store) Contacts(_ context.Context) ([]core.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Contact(nil), s.contacts...), nil
}

func (s *Store) Invoices(_ context.Context) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Invoice(nil), s.invoices...), nil
}

func (s *Store) Payments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Payment(nil), s.payments...), nil
}
