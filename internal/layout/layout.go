package layout

import (
	"errors"
	"fmt"
)

// ErrMissingPartial is returned when a layout partial cannot be resolved
var ErrMissingPartial = errors.New("missing partial")

// MissingPartial returns an ErrMissingPartial error naming the partial
func MissingPartial(name string) error {
	return fmt.Errorf("%w: '%s'", ErrMissingPartial, name)
}

// Partial is a resolved layout template
type Partial interface {
	Render(c *Context) (string, error)
}

// PartialFunc adapts a function to Partial
type PartialFunc func(c *Context) (string, error)

// Render calls f(c)
func (f PartialFunc) Render(c *Context) (string, error) {
	return f(c)
}

// Resolver resolves partial names. Unknown names yield an error wrapping
// ErrMissingPartial.
type Resolver interface {
	Resolve(name string) (Partial, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(name string) (Partial, error)

// Resolve calls f(name)
func (f ResolverFunc) Resolve(name string) (Partial, error) {
	return f(name)
}

func noop(*Context) string { return "" }

// Extend renders the partial name with a context inheriting from c.
//
// The layers (custom context, then keyword arguments) are merged into the new
// context and fn is queued as an override, to be run by the first block the
// partial reaches. Resolution happens before anything is touched, so a
// missing partial leaves the layout state as it was. An override that no
// block drained is run before Extend returns.
func (c *Context) Extend(r Resolver, name string, fn RenderFunc, layers ...map[string]interface{}) (string, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	child := c.Child()
	child.Merge(layers...)

	if fn == nil {
		fn = noop
	}
	st := child.State()
	o := st.push(fn)

	out, err := p.Render(child)
	if err != nil {
		return "", err
	}

	st.settle(child, o)

	return out, nil
}

// Embed is Extend on a fresh layout chain: the partial and everything it
// extends get their own empty state.
func (c *Context) Embed(r Resolver, name string, fn RenderFunc, layers ...map[string]interface{}) (string, error) {
	fresh := c.Child()
	fresh.detached = true
	return fresh.Extend(r, name, fn, layers...)
}

// Block marks an insertion point. Pending overrides are drained first, then
// the actions registered for name are folded over the default rendering in
// registration order.
func (c *Context) Block(name string, fn RenderFunc) string {
	st := c.State()
	st.drain(c)

	acc := ""
	if fn != nil {
		acc = fn(c)
	}

	for _, a := range st.Actions(name) {
		acc = a.apply(acc, c)
	}

	return acc
}

// Content runs the pending overrides, then registers fn under name with the
// given mode. A nil fn registers nothing.
func (c *Context) Content(name string, mode Mode, fn RenderFunc) {
	c.State().drain(c)
	c.Register(name, mode, fn)
}

// Register adds fn under name without running pending overrides. Callers
// that render content before registering it use Register: the block body may
// itself reach a block, which must see the content the page registered.
func (c *Context) Register(name string, mode Mode, fn RenderFunc) {
	if fn == nil {
		return
	}
	c.State().register(name, Action{Mode: mode, Render: fn})
}

// HasContent reports whether any content was registered under name
func (c *Context) HasContent(name string) bool {
	st := c.State()
	st.drain(c)
	return len(st.Actions(name)) > 0
}
