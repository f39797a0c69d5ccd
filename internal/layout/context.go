package layout

import (
	"maps"

	"github.com/spf13/cast"
)

// Context is a layered render scope. Reads check the local layer first,
// then the bound value, then the parent. Writes are always local.
type Context struct {
	parent   *Context
	values   map[string]interface{}
	this     interface{}
	state    *State
	detached bool
}

// NewContext creates a root context rendering against data
func NewContext(data interface{}) *Context {
	return &Context{
		values: make(map[string]interface{}),
		this:   data,
	}
}

// Child creates a context that inherits from c and shares its layout state
func (c *Context) Child() *Context {
	return &Context{
		parent: c,
		values: make(map[string]interface{}),
	}
}

// With returns a context rendering against this that shares c's layout state.
// It is used when the engine has moved into a nested scope (each, with) and a
// layout helper needs to continue from there.
func (c *Context) With(this interface{}) *Context {
	return &Context{
		values: make(map[string]interface{}),
		this:   this,
		state:  c.State(),
	}
}

// Set writes a value into the local layer
func (c *Context) Set(key string, value interface{}) {
	c.values[key] = value
}

// Merge copies every layer into the local layer, in order. Nil layers are skipped.
func (c *Context) Merge(layers ...map[string]interface{}) {
	for _, layer := range layers {
		maps.Copy(c.values, layer)
	}
}

// Get looks key up through the layers
func (c *Context) Get(key string) (interface{}, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
		if m, ok := toMap(cur.this); ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// Map flattens the layers, root first, into a single map
func (c *Context) Map() map[string]interface{} {
	out := make(map[string]interface{})
	if c.parent != nil {
		maps.Copy(out, c.parent.Map())
	}
	if m, ok := toMap(c.this); ok {
		maps.Copy(out, m)
	}
	maps.Copy(out, c.values)
	return out
}

// This returns the value templates should be rendered against. A context with
// no local values and no parent renders against its bound value unchanged, so
// structs and scalars keep their identity.
func (c *Context) This() interface{} {
	if c.parent == nil && len(c.values) == 0 && c.this != nil {
		return c.this
	}
	return c.Map()
}

// State returns the layout state shared by c. It is created on first use at
// the nearest detached ancestor, or at the root when there is none.
func (c *Context) State() *State {
	for cur := c; ; cur = cur.parent {
		if cur.state != nil {
			return cur.state
		}
		if cur.detached || cur.parent == nil {
			cur.state = newState()
			return cur.state
		}
	}
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case nil, string:
		return nil, false
	case map[string]interface{}:
		return m, true
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, false
	}
	return m, true
}
