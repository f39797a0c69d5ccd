package helpers

import (
	"strconv"
	"strings"
)

// Iteration describes one pass of Repeat
type Iteration struct {
	Index       int
	First       bool
	Last        bool
	ContextPath string
}

// Repeat renders body until times. A bound that is not a number, or that is
// not positive, renders inverse instead. basePath prefixes the context path
// handed to each iteration.
func Repeat(until interface{}, basePath string, body func(Iteration) string, inverse func() string) string {
	n, ok := number(until)
	if !ok || int(n) <= 0 {
		if inverse == nil {
			return ""
		}
		return inverse()
	}

	total := int(n)
	prefix := strconv.Itoa(total) + "."
	if basePath != "" {
		prefix = basePath + "." + prefix
	}

	var out strings.Builder
	for i := 0; i < total; i++ {
		out.WriteString(body(Iteration{
			Index:       i,
			First:       i == 0,
			Last:        i == total-1,
			ContextPath: prefix + strconv.Itoa(i),
		}))
	}
	return out.String()
}
