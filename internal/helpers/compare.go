package helpers

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/ghetzel/go-stockutil/stringutil"
	"github.com/spf13/cast"
)

// ErrUnknownOperator is returned by Compare and ParseOperator for unsupported tokens
var ErrUnknownOperator = errors.New(`helper "compare" doesn't know the operator`)

// Operator is a comparison understood by Compare
type Operator int

// Supported operators, with their template tokens
const (
	OpEqual          Operator = iota // ==
	OpStrictEqual                    // ===
	OpNotEqual                       // !=
	OpStrictNotEqual                 // !==
	OpLess                           // <
	OpGreater                        // >
	OpLessEqual                      // <=
	OpGreaterEqual                   // >=
	OpTypeOf                         // typeof
)

var operatorTokens = map[string]Operator{
	"==":     OpEqual,
	"===":    OpStrictEqual,
	"!=":     OpNotEqual,
	"!==":    OpStrictNotEqual,
	"<":      OpLess,
	">":      OpGreater,
	"<=":     OpLessEqual,
	">=":     OpGreaterEqual,
	"typeof": OpTypeOf,
}

// ParseOperator maps a template token to its Operator
func ParseOperator(token string) (Operator, error) {
	op, ok := operatorTokens[token]
	if !ok {
		return 0, fmt.Errorf("%w %s", ErrUnknownOperator, token)
	}
	return op, nil
}

// String returns the template token of op
func (op Operator) String() string {
	for token, o := range operatorTokens {
		if o == op {
			return token
		}
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Eval applies op to left and right
func (op Operator) Eval(left, right interface{}) bool {
	switch op {
	case OpEqual:
		return looseEqual(left, right)
	case OpStrictEqual:
		return strictEqual(left, right)
	case OpNotEqual:
		return !looseEqual(left, right)
	case OpStrictNotEqual:
		return !strictEqual(left, right)
	case OpLess:
		c, ok := order(left, right)
		return ok && c < 0
	case OpGreater:
		c, ok := order(left, right)
		return ok && c > 0
	case OpLessEqual:
		c, ok := order(left, right)
		return ok && c <= 0
	case OpGreaterEqual:
		c, ok := order(left, right)
		return ok && c >= 0
	case OpTypeOf:
		want, ok := right.(string)
		return ok && TypeOf(left) == want
	}
	return false
}

// Compare renders the block when left token right holds. An unknown token is
// an error.
func Compare(left interface{}, token string, right interface{}, b *Branches) (string, error) {
	op, err := ParseOperator(token)
	if err != nil {
		return "", err
	}
	return b.choose(op.Eval(left, right)), nil
}

// TypeOf names the type of v the way scripts see it: string, number,
// boolean, function, undefined or object.
func TypeOf(v interface{}) string {
	if v == nil {
		return "undefined"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Func:
		return "function"
	}
	if isNumber(v) {
		return "number"
	}
	return "object"
}

func isNumber(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// strictEqual compares without coercion. Numbers compare by value across
// Go numeric types; maps, slices and funcs compare by identity.
func strictEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if isNumber(a) && isNumber(b) {
		fa, _ := cast.ToFloat64E(a)
		fb, _ := cast.ToFloat64E(b)
		return fa == fb
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// looseEqual compares with type coercion, so 1 and "1" are equal
func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if strictEqual(a, b) {
		return true
	}
	eq, err := stringutil.RelaxedEqual(a, b)
	return err == nil && eq
}

// order compares two strings lexically and anything else numerically. The
// second result is false when the values have no ordering.
func order(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), true
		}
	}

	fa, err := cast.ToFloat64E(a)
	if err != nil || math.IsNaN(fa) {
		return 0, false
	}
	fb, err := cast.ToFloat64E(b)
	if err != nil || math.IsNaN(fb) {
		return 0, false
	}

	return cmp.Compare(fa, fb), true
}
