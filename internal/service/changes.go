package service

import (
	"reflect"

	"github.com/r3labs/diff/v3"
	"github.com/shopspring/decimal"

	"rentaltoll-backend/internal/domain"
)

const (
	fieldAmount    = "amount"
	fieldTotalPaid = "total_paid"
	fieldStartDate = "start_date"
	fieldEndDate   = "end_date"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalComparer compares decimals by value so 5 and 5.00 are equal.
type decimalComparer struct{}

func (decimalComparer) Match(a, b reflect.Value) bool {
	aok := a.Kind() == reflect.Struct && a.Type() == decimalType
	bok := b.Kind() == reflect.Struct && b.Type() == decimalType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

func (decimalComparer) Diff(_ diff.DiffType, _ diff.DiffFunc, cl *diff.Changelog, path []string, a, b reflect.Value, _ interface{}) error {
	if !a.IsValid() || !b.IsValid() {
		if a.IsValid() != b.IsValid() {
			cl.Add(diff.UPDATE, path, valueOf(a), valueOf(b))
		}
		return nil
	}
	da := a.Interface().(decimal.Decimal)
	db := b.Interface().(decimal.Decimal)
	if !da.Equal(db) {
		cl.Add(diff.UPDATE, path, da.String(), db.String())
	}
	return nil
}

// InsertParentDiffer is a no-op: decimals are leaves.
func (decimalComparer) InsertParentDiffer(_ func(path []string, a, b reflect.Value, p interface{}) error) {}

func valueOf(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// newRentalDiffer builds a differ per call. A Differ accumulates its
// changelog internally and must not be shared across goroutines.
func newRentalDiffer() (*diff.Differ, error) {
	return diff.NewDiffer(diff.CustomValueDiffers(&decimalComparer{}))
}

type rentalChanges map[string]diff.Change

func diffRental(before, after *domain.Rental) (rentalChanges, error) {
	d, err := newRentalDiffer()
	if err != nil {
		return nil, err
	}
	cl, err := d.Diff(before, after)
	if err != nil {
		return nil, err
	}
	out := make(rentalChanges, len(cl))
	for _, c := range cl {
		if len(c.Path) > 0 {
			out[c.Path[0]] = c
		}
	}
	return out, nil
}

func (c rentalChanges) touches(fields ...string) bool {
	for _, f := range fields {
		if _, ok := c[f]; ok {
			return true
		}
	}
	return false
}

func (c rentalChanges) fields() []string {
	out := make([]string, 0, len(c))
	for f := range c {
		out = append(out, f)
	}
	return out
}
