package decision

import (
	"strconv"
	"strings"
)

// ParseCurrency turns a currency-like cell value ("$40.00", "(1,234.50)",
// " -5 ") into a float. Every character other than digits, '.' and '-' is
// stripped before parsing. Values that still fail to parse, including the
// bare "-" left over from a dash placeholder cell, degrade to 0; noisy
// spreadsheet cells must not abort a whole computation.
func ParseCurrency(raw string) float64 {
	var b strings.Builder
	for _, c := range raw {
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			b.WriteRune(c)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
