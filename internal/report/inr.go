package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount as rupees with Indian digit grouping, so
// 1234567 becomes ₹12,34,567. Paise are truncated.
func FormatINR(d decimal.Decimal) string {
	n := d.IntPart()
	if n < 0 {
		return "-" + FormatINR(decimal.NewFromInt(-n))
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return "₹" + s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return "₹" + strings.Join(parts, ",") + "," + tail
}
