package books

import (
	"fmt"
	"strings"

	"feetrack/internal/core"
)

func normalizeHeader(value string) string {
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ReplaceAll(value, ".", "")
	return value
}

func normalizeHeaders(header []string) map[string]int {
	result := make(map[string]int, len(header))
	for idx, h := range header {
		normalized := normalizeHeader(h)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

// column resolves a required column by its human-readable name.
func column(table string, cols map[string]int, name string) (int, error) {
	idx, ok := cols[normalizeHeader(name)]
	if !ok {
		return -1, fmt.Errorf("%s: %w %q", table, core.ErrMissingColumn, name)
	}
	return idx, nil
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseContacts converts a contacts grid into typed rows. The first row is
// the header; blank rows are skipped.
func ParseContacts(rows [][]string) ([]core.Contact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("contacts: %w", core.ErrEmptyTable)
	}
	cols := normalizeHeaders(rows[0])

	var idx struct{ id, first, last, school, grade, section, opening, enrollment int }
	var err error
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"Contact ID", &idx.id},
		{"First Name", &idx.first},
		{"Last Name", &idx.last},
		{"School", &idx.school},
		{"Grade", &idx.grade},
		{"Section", &idx.section},
		{"Opening Balance", &idx.opening},
		{"CF.Enrollment Code", &idx.enrollment},
	} {
		if *c.dst, err = column("contacts", cols, c.name); err != nil {
			return nil, err
		}
	}

	contacts := make([]core.Contact, 0, len(rows)-1)
	for _, record := range rows[1:] {
		if blankRow(record) {
			continue
		}
		contacts = append(contacts, core.Contact{
			ContactID:      getValue(record, idx.id),
			FirstName:      getValue(record, idx.first),
			LastName:       getValue(record, idx.last),
			School:         core.School(getValue(record, idx.school)),
			Grade:          getValue(record, idx.grade),
			Section:        getValue(record, idx.section),
			OpeningBalance: core.CoerceAmount(getValue(record, idx.opening)),
			EnrollmentCode: getValue(record, idx.enrollment),
		})
	}
	return contacts, nil
}

// ParseInvoices converts an invoices grid into typed rows. Total and
// Invoice Date are informational and tolerated when absent; everything else
// is required.
func ParseInvoices(rows [][]string) ([]core.Invoice, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("invoices: %w", core.ErrEmptyTable)
	}
	cols := normalizeHeaders(rows[0])

	var idx struct{ number, customer, school, grade, section, item, status, balance, due int }
	var err error
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"Invoice Number", &idx.number},
		{"Customer ID", &idx.customer},
		{"School", &idx.school},
		{"Grade", &idx.grade},
		{"Section", &idx.section},
		{"Item Name", &idx.item},
		{"Invoice Status", &idx.status},
		{"Balance", &idx.balance},
		{"Due Date", &idx.due},
	} {
		if *c.dst, err = column("invoices", cols, c.name); err != nil {
			return nil, err
		}
	}
	totalIdx, hasTotal := cols[normalizeHeader("Total")]
	dateIdx, hasDate := cols[normalizeHeader("Invoice Date")]

	invoices := make([]core.Invoice, 0, len(rows)-1)
	for _, record := range rows[1:] {
		if blankRow(record) {
			continue
		}
		inv := core.Invoice{
			InvoiceNumber: getValue(record, idx.number),
			CustomerID:    getValue(record, idx.customer),
			School:        core.School(getValue(record, idx.school)),
			Grade:         getValue(record, idx.grade),
			Section:       getValue(record, idx.section),
			ItemName:      getValue(record, idx.item),
			Status:        core.InvoiceStatus(getValue(record, idx.status)),
			Balance:       core.CoerceAmount(getValue(record, idx.balance)),
			DueDate:       core.ParseDate(getValue(record, idx.due)),
		}
		if hasTotal {
			inv.Total = core.CoerceAmount(getValue(record, totalIdx))
		}
		if hasDate {
			inv.InvoiceDate = core.ParseDate(getValue(record, dateIdx))
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// ParsePayments converts a customer-payments grid into typed rows.
func ParsePayments(rows [][]string) ([]core.Payment, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("payments: %w", core.ErrEmptyTable)
	}
	cols := normalizeHeaders(rows[0])

	var idx struct{ customer, invoice, amount, name int }
	var err error
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"CustomerID", &idx.customer},
		{"Invoice Number", &idx.invoice},
		{"Amount Applied to Invoice", &idx.amount},
		{"Customer Name", &idx.name},
	} {
		if *c.dst, err = column("payments", cols, c.name); err != nil {
			return nil, err
		}
	}

	payments := make([]core.Payment, 0, len(rows)-1)
	for _, record := range rows[1:] {
		if blankRow(record) {
			continue
		}
		payments = append(payments, core.Payment{
			CustomerID:   getValue(record, idx.customer),
			InvoiceRef:   getValue(record, idx.invoice),
			Amount:       core.CoerceAmount(getValue(record, idx.amount)),
			CustomerName: getValue(record, idx.name),
		})
	}
	return payments, nil
}
