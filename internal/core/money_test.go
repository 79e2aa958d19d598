package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1234.5", "1234.5", true},
		{"1,234.50", "1234.5", true},
		{"12,34,567", "1234567", true}, // lakh grouping
		{"₹500", "500", true},
		{"INR 500", "500", true},
		{" 2.50 ", "2.5", true},
		{"-150", "-150", true}, // credit balances stay negative
		{"0", "0", true},
		{"", "0", false},
		{"abc", "0", false},
		{"1.2.3", "0", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if want := decimal.RequireFromString(tc.out); !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, want, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCoerceAmount(t *testing.T) {
	if got := CoerceAmount("n/a"); !got.IsZero() {
		t.Fatalf("junk expected zero, got %s", got)
	}
	if got := CoerceAmount(""); !got.IsZero() {
		t.Fatalf("blank expected zero, got %s", got)
	}
	if got := CoerceAmount("₹1,000"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", got)
	}
}
