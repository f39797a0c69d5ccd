package helpers

import (
	"reflect"

	"github.com/ghetzel/go-stockutil/sliceutil"
	"github.com/ghetzel/go-stockutil/typeutil"
	"github.com/mailgun/raymond/v2"
)

// Branches carries the two renderings of a block helper. A nil *Branches
// means the helper was used without a block.
type Branches struct {
	Fn      func() string
	Inverse func() string
}

// Then returns the block rendering
func (b *Branches) Then() string {
	if b == nil || b.Fn == nil {
		return ""
	}
	return b.Fn()
}

// Else returns the inverse rendering
func (b *Branches) Else() string {
	if b == nil || b.Inverse == nil {
		return ""
	}
	return b.Inverse()
}

// choose renders Then when ok holds, Else otherwise
func (b *Branches) choose(ok bool) string {
	if b == nil {
		return ""
	}
	if ok {
		return b.Then()
	}
	return b.Else()
}

// Truthy reports Handlebars truthiness: empty strings, slices and maps,
// zero numbers, false and nil are falsy.
func Truthy(v interface{}) bool {
	return raymond.IsTrue(v)
}

// sequence returns the elements of an array or slice, or nil for anything else
func sequence(v interface{}) []interface{} {
	if v == nil || !typeutil.IsArray(v) {
		return nil
	}
	return sliceutil.Sliceify(v)
}

// length is the length of a sequence, string or map; zero for anything else
func length(v interface{}) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice, reflect.String, reflect.Map:
		return rv.Len()
	}
	return 0
}
