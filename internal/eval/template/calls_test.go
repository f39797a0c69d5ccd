package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	sigs := map[string]signature{
		"is":       {params: 2},
		"first":    {params: 2},
		"in":       {params: 2, variadic: true},
		"uniqueId": {params: 0},
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "block with every parameter",
			src:  `{{#is a b}}x{{/is}}`,
			want: `{{#is a b __argc=2 __block=true }}x{{/is}}`,
		},
		{
			name: "missing parameter",
			src:  `{{first items}}`,
			want: `{{first items __none  __argc=1 }}`,
		},
		{
			name: "missing parameter before hash",
			src:  `{{first items mode="x"}}`,
			want: `{{first items  __none mode="x" __argc=1 }}`,
		},
		{
			name: "variadic tail",
			src:  `{{#in x "a" 'b'}}y{{/in}}`,
			want: `{{#in x (__list "a" 'b')  __argc=3 __block=true }}y{{/in}}`,
		},
		{
			name: "variadic without tail",
			src:  `{{in x}}`,
			want: `{{in x __none  __argc=1 }}`,
		},
		{
			name: "no parameters",
			src:  `{{uniqueId}}`,
			want: `{{uniqueId __argc=0 }}`,
		},
		{
			name: "subexpression",
			src:  `{{#if (is a b)}}x{{/if}}`,
			want: `{{#if (is a b __argc=2 )}}x{{/if}}`,
		},
		{
			name: "subexpression parameter counts once",
			src:  `{{first (array 1 2) 1}}`,
			want: `{{first (array 1 2) 1 __argc=2 }}`,
		},
		{
			name: "path literal",
			src:  `{{first [my items]}}`,
			want: `{{first [my items] __none  __argc=1 }}`,
		},
		{
			name: "else chain",
			src:  `{{#is a 1}}x{{else is a 2}}y{{/is}}`,
			want: `{{#is a 1 __argc=2 __block=true }}x{{else is a 2 __argc=2 __block=true }}y{{/is}}`,
		},
		{
			name: "field path",
			src:  `{{is.x}}`,
			want: `{{is.x}}`,
		},
		{
			name: "private variable",
			src:  `{{#each items}}{{@first}}{{/each}}`,
			want: `{{#each items}}{{@first}}{{/each}}`,
		},
		{
			name: "unknown helper",
			src:  `{{upper name}}`,
			want: `{{upper name}}`,
		},
		{
			name: "lexer error",
			src:  `{{is a "b}}`,
			want: `{{is a "b}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.src, sigs))
		})
	}
}

func TestSignatureOf(t *testing.T) {
	tests := []struct {
		name     string
		fn       interface{}
		variadic bool
		want     signature
	}{
		{"options excluded", compareHelper, false, signature{params: 3}},
		{"plain function", strings.ToUpper, false, signature{params: 1}},
		{"options only", uniqueIDHelper, false, signature{params: 0}},
		{"variadic", inHelper, true, signature{params: 2, variadic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signatureOf(tt.fn, tt.variadic))
		})
	}
}

func TestApplyKeepsInsertionOrder(t *testing.T) {
	out := apply("ab", []edit{
		{pos: 1, text: "1"},
		{pos: 0, text: "0"},
		{pos: 1, text: "2"},
	})
	assert.Equal(t, "0a12b", out)
}
