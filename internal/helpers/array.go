package helpers

import (
	"strings"

	"github.com/spf13/cast"
)

// First returns the first element of items, or nil when there is none
func First(items interface{}) interface{} {
	seq := sequence(items)
	if len(seq) == 0 {
		return nil
	}
	return seq[0]
}

// FirstN returns the leading n elements of items
func FirstN(items interface{}, n interface{}) []interface{} {
	return slice(sequence(items), 0, count(n))
}

// Last returns the final element of items, or nil when there is none
func Last(items interface{}) interface{} {
	seq := sequence(items)
	if len(seq) == 0 {
		return nil
	}
	return seq[len(seq)-1]
}

// LastN returns the trailing n elements of items. LastN(items, 0) is every element.
func LastN(items interface{}, n interface{}) []interface{} {
	seq := sequence(items)
	return slice(seq, -count(n), len(seq))
}

// After drops the leading n elements of items
func After(items interface{}, n interface{}) []interface{} {
	seq := sequence(items)
	return slice(seq, count(n), len(seq))
}

// Before drops the trailing n elements of items. Before(items, 0) is empty.
func Before(items interface{}, n interface{}) []interface{} {
	return slice(sequence(items), 0, -count(n))
}

// Join concatenates the elements of items, as text, around sep
func Join(items interface{}, sep string) string {
	seq := sequence(items)
	parts := make([]string, len(seq))
	for i, v := range seq {
		parts[i] = cast.ToString(v)
	}
	return strings.Join(parts, sep)
}

// Length is the number of elements of a sequence or map, or of bytes of a
// string. Anything else has length 0.
func Length(v interface{}) int {
	return length(v)
}

// Array collects its arguments into a new slice
func Array(values ...interface{}) []interface{} {
	return append(make([]interface{}, 0, len(values)), values...)
}

// slice copies seq[start:end]. Negative bounds count from the end and
// out-of-range bounds are clamped.
func slice(seq []interface{}, start, end int) []interface{} {
	start = bound(start, len(seq))
	end = bound(end, len(seq))
	if end < start {
		end = start
	}
	return append(make([]interface{}, 0, end-start), seq[start:end]...)
}

func bound(i, n int) int {
	if i < 0 {
		return max(n+i, 0)
	}
	return min(i, n)
}

func count(n interface{}) int {
	c, err := cast.ToIntE(n)
	if err != nil {
		return 0
	}
	return c
}
