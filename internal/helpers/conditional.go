package helpers

import (
	"math"
	"strings"

	"github.com/ghetzel/go-stockutil/typeutil"
	"github.com/spf13/cast"
)

// Every conditional renders b.Fn when its test holds and b.Inverse otherwise.
// Without a block (nil b) they render the empty string.

// Any tests that items has at least one element
func Any(items interface{}, b *Branches) string {
	return b.choose(length(items) > 0)
}

// Empty tests that items has no element
func Empty(items interface{}, b *Branches) string {
	return b.choose(length(items) <= 0)
}

// LengthEqual tests that items has exactly n elements
func LengthEqual(items interface{}, n interface{}, b *Branches) string {
	want, err := cast.ToIntE(n)
	return b.choose(err == nil && isNumber(n) && length(items) == want)
}

// Contains tests that haystack holds needle: element membership for
// sequences, substring search for everything else.
func Contains(haystack, needle interface{}, b *Branches) string {
	if haystack == nil {
		return b.choose(false)
	}
	if typeutil.IsArray(haystack) {
		return b.choose(indexOf(sequence(haystack), needle) >= 0)
	}

	s, err := cast.ToStringE(haystack)
	if err != nil {
		return b.choose(false)
	}
	sub, err := cast.ToStringE(needle)
	if err != nil {
		return b.choose(false)
	}
	return b.choose(strings.Contains(s, sub))
}

// And tests that every operand is truthy. A single operand stands alone:
// the missing second operand counts as true.
func And(b *Branches, operands ...interface{}) string {
	if len(operands) == 0 {
		return b.Else()
	}
	for _, op := range operands[:min(len(operands), 2)] {
		if !Truthy(op) {
			return b.choose(false)
		}
	}
	return b.choose(true)
}

// Or tests that at least one of the operands is truthy
func Or(b *Branches, operands ...interface{}) string {
	if len(operands) == 0 {
		return b.Else()
	}
	for _, op := range operands[:min(len(operands), 2)] {
		if Truthy(op) {
			return b.choose(true)
		}
	}
	return b.choose(false)
}

// Is tests strict equality
func Is(value, other interface{}, b *Branches) string {
	return b.choose(strictEqual(value, other))
}

// Isnt tests strict inequality
func Isnt(value, other interface{}, b *Branches) string {
	return b.choose(!strictEqual(value, other))
}

// Gt tests value > other
func Gt(value, other interface{}, b *Branches) string {
	return b.choose(OpGreater.Eval(value, other))
}

// Gte tests value >= other
func Gte(value, other interface{}, b *Branches) string {
	return b.choose(OpGreaterEqual.Eval(value, other))
}

// Lt tests value < other
func Lt(value, other interface{}, b *Branches) string {
	return b.choose(OpLess.Eval(value, other))
}

// Lte tests value <= other
func Lte(value, other interface{}, b *Branches) string {
	return b.choose(OpLessEqual.Eval(value, other))
}

// IfEven tests that value is an even number
func IfEven(value interface{}, b *Branches) string {
	n, ok := number(value)
	return b.choose(ok && math.Mod(n, 2) == 0)
}

// IfNth tests that the 1-based position of the zero-based index is a
// multiple of nth
func IfNth(nth, index interface{}, b *Branches) string {
	n, ok := number(nth)
	if !ok || n == 0 {
		return b.choose(false)
	}
	i, ok := number(index)
	return b.choose(ok && math.Mod(i+1, n) == 0)
}

// In tests that value is one of the candidates
func In(value interface{}, candidates []interface{}, b *Branches) string {
	return b.choose(indexOf(candidates, value) >= 0)
}

// IsArray tests that value is an array or a slice
func IsArray(value interface{}, b *Branches) string {
	return b.choose(value != nil && typeutil.IsArray(value))
}

// IfAny tests that at least one value was given and all of them are truthy.
// Funcs are called for their value first.
func IfAny(values []interface{}, b *Branches) string {
	if len(values) == 0 {
		return b.choose(false)
	}
	for _, v := range values {
		if !Truthy(unwrap(v)) {
			return b.choose(false)
		}
	}
	return b.choose(true)
}

func indexOf(items []interface{}, v interface{}) int {
	for i, item := range items {
		if strictEqual(item, v) {
			return i
		}
	}
	return -1
}

// number coerces v to a float. Missing values and non-numeric strings fail.
func number(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// unwrap calls a func() value and returns its result
func unwrap(v interface{}) interface{} {
	if fn, ok := v.(func() interface{}); ok {
		return fn()
	}
	return v
}
