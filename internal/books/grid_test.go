package books

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadGridCSV(t *testing.T) {
	in := "Contact ID,First Name\nC1,Asha\nC2,Vikram\n"
	rows, err := ReadGrid("contacts.csv", strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "C1" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestReadGridCSVRaggedRows(t *testing.T) {
	in := "a,b,c\n1,2\n1,2,3,4\n"
	rows, err := ReadGrid("t.csv", strings.NewReader(in))
	if err != nil {
		t.Fatalf("ragged exports must still load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestReadGridXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Contact ID", "First Name"}); err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"C1", "Asha"}); err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}

	rows, err := ReadGrid("contacts.xlsx", buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "Contact ID" || rows[1][1] != "Asha" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestReadGridUnsupportedType(t *testing.T) {
	if _, err := ReadGrid("contacts.xls", strings.NewReader("x")); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := ReadGrid("contacts.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}
