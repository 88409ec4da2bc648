package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount bounds stored amounts. Amount columns are NUMERIC(12,2).
var MaxAmount = decimal.New(1, 10)

// NormalizeAmount rounds d to cents. It reports false when d does not fit
// an amount column.
func NormalizeAmount(d decimal.Decimal) (decimal.Decimal, bool) {
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount converts a provider amount into a signed value owed by the
// renter. Parenthesised values like "($9.00)" are charges (+9.00), bare
// values like "$3.00" are credits (-3.00). The result is rounded to cents.
// Anything unparseable or out of range is zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	charge := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		charge = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	d, ok := NormalizeAmount(d)
	if !ok {
		return decimal.Zero
	}
	if charge {
		return d
	}
	return d.Neg()
}
