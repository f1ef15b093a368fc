// Package money parses and formats rupiah amounts the way users type them
// in chat: "15000", "Rp 15.000", "15.000,50". Amounts are whole rupiah,
// kept as int64. No floats.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	// ErrMalformed means the text is not a number at all. Distinct from
	// ErrNotPositive so callers can tell "garbage" from "zero or negative".
	ErrMalformed = errors.New("malformed amount")

	// ErrNotPositive means the text parsed fine but the value is <= 0.
	ErrNotPositive = errors.New("amount must be positive")
)

// formatter renders whole rupiah with the IDR locale conventions
// (Rp prefix, "." thousands grouping). Fraction is forced to 0 because
// the ledger stores whole rupiah only.
var formatter = func() *gomoney.Formatter {
	f := *gomoney.GetCurrency(gomoney.IDR).Formatter()
	f.Fraction = 0
	return &f
}()

var marker = strings.NewReplacer("Rp", "", "rp", "", "RP", "", "rP", "")

// Parse converts a user-typed rupiah amount to an int64. It strips
// whitespace and the Rp marker, drops "." thousands separators, converts a
// decimal comma to a decimal point and rounds to the nearest rupiah.
func Parse(s string) (int64, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := marker.Replace(b.String())
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return d.Round(0).IntPart(), nil
}

// ParsePositive is Parse restricted to amounts > 0, the form every profit
// value must take.
func ParsePositive(s string) (int64, error) {
	n, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNotPositive, n)
	}
	return n, nil
}

// Format renders n as rupiah with thousands grouping, e.g. Rp15.000.
// Parse(Format(n)) == n for every representable n.
func Format(n int64) string {
	return formatter.Format(n)
}
