package memory

import (
	"context"
	"testing"

	"feetrack/internal/books"
	"feetrack/internal/core"
)

var (
	contactGrid = [][]string{
		{"Contact ID", "First Name", "Last Name", "School", "Grade", "Section", "Opening Balance", "CF.Enrollment Code"},
		{"C1", "Asha", "Rao", "Excel Global School", "Grade 5", "A", "2500", "EGS-001"},
	}
	invoiceGrid = [][]string{
		{"Invoice Number", "Customer ID", "School", "Grade", "Section", "Item Name", "Invoice Status", "Balance", "Due Date"},
		{"INV-1", "C1", "Excel Global School", "Grade 5", "A", "Term I Fee (June)", "Overdue", "5000", "2025-06-05"},
	}
	paymentGrid = [][]string{
		{"CustomerID", "Invoice Number", "Amount Applied to Invoice", "Customer Name"},
		{"C1", "Customer opening balance", "1000", "Asha Rao"},
	}
)

func TestFromGrids(t *testing.T) {
	src, err := FromGrids(contactGrid, invoiceGrid, paymentGrid)
	if err != nil {
		t.Fatalf("FromGrids: %v", err)
	}
	asOf := core.NewDate(2025, 10, 1)

	snap, err := books.LoadSnapshot(context.Background(), src, src, src, asOf)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if len(snap.Contacts) != 1 || len(snap.Invoices) != 1 || len(snap.Payments) != 1 {
		t.Fatalf("snapshot sizes = %d/%d/%d, want 1/1/1",
			len(snap.Contacts), len(snap.Invoices), len(snap.Payments))
	}
	if !snap.AsOf.Equal(asOf.Time) {
		t.Errorf("AsOf = %v, want %v", snap.AsOf, asOf)
	}
	if !snap.Payments[0].IsOpeningBalance() {
		t.Error("payment not recognized as opening balance")
	}
}

func TestFromGridsWithoutPayments(t *testing.T) {
	src, err := FromGrids(contactGrid, invoiceGrid, nil)
	if err != nil {
		t.Fatalf("FromGrids: %v", err)
	}

	snap, err := books.LoadSnapshot(context.Background(), src, src, src, core.NewDate(2025, 10, 1))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Payments) != 0 {
		t.Errorf("payments = %d, want 0", len(snap.Payments))
	}
}

func TestFromGridsBadTable(t *testing.T) {
	missingID := [][]string{
		{"First Name", "Last Name", "School", "Grade", "Section"},
		{"Asha", "Rao", "Excel Global School", "Grade 5", "A"},
	}
	if _, err := FromGrids(missingID, invoiceGrid, nil); err == nil {
		t.Fatal("FromGrids accepted a contacts table without a Contact ID column")
	}
}

func TestStoreCopiesOnRead(t *testing.T) {
	src, err := FromGrids(contactGrid, invoiceGrid, nil)
	if err != nil {
		t.Fatalf("FromGrids: %v", err)
	}

	contacts, err := src.Contacts(context.Background())
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	contacts[0].FirstName = "mutated"

	again, err := src.Contacts(context.Background())
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if again[0].FirstName != "Asha" {
		t.Errorf("store row changed to %q after caller mutation", again[0].FirstName)
	}
}
