package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type page struct {
	Title string
}

func TestContextThis(t *testing.T) {
	p := page{Title: "About"}
	assert.Equal(t, p, NewContext(p).This())

	child := NewContext(map[string]interface{}{"a": 1}).Child()
	child.Set("b", 2)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, child.This())
}

func TestContextGet(t *testing.T) {
	root := NewContext(map[string]string{"name": "root"})
	child := root.Child()
	child.Set("name", nil)

	v, ok := child.Get("name")
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = root.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "root", v)

	_, ok = root.Get("missing")
	assert.False(t, ok)
}

func TestContextWithSharesState(t *testing.T) {
	root := NewContext(nil)
	item := root.Child().With(map[string]interface{}{"id": 3})

	item.Content("title", ModeReplace, text("x"))
	assert.True(t, root.HasContent("title"))

	id, ok := item.Get("id")
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestStateStopsAtDetached(t *testing.T) {
	root := NewContext(nil)
	fresh := root.Child()
	fresh.detached = true
	nested := fresh.Child()

	assert.Same(t, fresh.State(), nested.State())
	assert.NotSame(t, root.State(), nested.State())
}
