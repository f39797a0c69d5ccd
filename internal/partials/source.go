package partials

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Source that has no partial under the requested name
var ErrNotFound = errors.New("partial not found")

// Source loads partial templates by name
type Source interface {
	Load(ctx context.Context, name string) (string, error)
}

// NotFound returns an ErrNotFound error naming the partial
func NotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// MapSource serves partials from memory
type MapSource map[string]string

// Load returns the partial registered under name
func (m MapSource) Load(_ context.Context, name string) (string, error) {
	src, ok := m[name]
	if !ok {
		return "", NotFound(name)
	}
	return src, nil
}

// Chain tries each source in turn. The first source that knows the name wins;
// any error other than ErrNotFound stops the lookup.
type Chain []Source

// Load returns the partial from the first source that has it
func (c Chain) Load(ctx context.Context, name string) (string, error) {
	for _, s := range c {
		src, err := s.Load(ctx, name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", NotFound(name)
}
