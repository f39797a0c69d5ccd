package helpers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mailgun/raymond/v2"
)

// Link returns url with its fragment replaced by (or extended with)
// fragment. Everything before the fragment marker is kept. A url that is not
// a string is treated as empty.
func Link(url interface{}, fragment string) string {
	s, ok := url.(string)
	if !ok {
		s = ""
	}
	if fragment == "" {
		return s
	}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s + "#" + fragment
}

// Serialize returns the JSON encoding of value as pre-escaped markup. A
// func() interface{} is called for its value first.
func Serialize(value interface{}) (raymond.SafeString, error) {
	data, err := json.Marshal(unwrap(value))
	if err != nil {
		return "", fmt.Errorf("failed to serialize value: %w", err)
	}
	return raymond.SafeString(data), nil
}

// Slug returns a URL-safe identifier for s
func Slug(s string) string {
	return slug.Make(s)
}
