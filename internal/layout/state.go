package layout

import "strings"

// Mode controls how a content action combines with the accumulated block value
type Mode string

const (
	// ModeReplace discards the accumulated value
	ModeReplace Mode = "replace"
	// ModeAppend adds the rendering after the accumulated value
	ModeAppend Mode = "append"
	// ModePrepend adds the rendering before the accumulated value
	ModePrepend Mode = "prepend"
)

// ParseMode parses a mode case-insensitively. An empty string is ModeReplace.
// Unknown modes are kept as-is and leave the accumulated value unchanged.
func ParseMode(s string) Mode {
	if s == "" {
		return ModeReplace
	}
	return Mode(strings.ToLower(s))
}

// RenderFunc renders a template body against a context
type RenderFunc func(c *Context) string

// Action is one contribution to a named block
type Action struct {
	Mode   Mode
	Render RenderFunc
}

func (a Action) apply(acc string, c *Context) string {
	switch a.Mode {
	case ModeAppend:
		return acc + a.Render(c)
	case ModePrepend:
		return a.Render(c) + acc
	case ModeReplace:
		return a.Render(c)
	default:
		return acc
	}
}

type override struct {
	fn RenderFunc
}

type entry struct {
	name   string
	action Action
}

// State is the layout state of one top-level render: the queue of pending
// overrides pushed by extend and the content actions registered per block.
//
// Actions registered while an override runs are held in that override's
// frame until the overrides queued behind it have run, so an inner layout's
// content always folds before the content of the page extending it.
type State struct {
	stack   []*override
	frames  [][]entry
	actions map[string][]Action
}

func newState() *State {
	return &State{actions: make(map[string][]Action)}
}

// Pending returns the number of overrides waiting to be drained
func (s *State) Pending() int {
	return len(s.stack)
}

// Actions returns the actions registered for name, in fold order. Actions
// still held by a running override are included.
func (s *State) Actions(name string) []Action {
	out := append([]Action(nil), s.actions[name]...)
	for i := len(s.frames) - 1; i >= 0; i-- {
		for _, e := range s.frames[i] {
			if e.name == name {
				out = append(out, e.action)
			}
		}
	}
	return out
}

func (s *State) push(fn RenderFunc) *override {
	o := &override{fn: fn}
	s.stack = append(s.stack, o)
	return o
}

// drain runs every pending override once, oldest first. Overrides pushed
// while draining are run too. The actions an override registers are
// committed after every override behind it has run.
func (s *State) drain(c *Context) {
	if len(s.stack) == 0 {
		return
	}

	fn := s.shift()
	s.frames = append(s.frames, nil)
	fn(c)
	s.drain(c)
	s.flush()
}

// flush commits the actions of the innermost frame
func (s *State) flush() {
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	for _, e := range top {
		s.actions[e.name] = append(s.actions[e.name], e.action)
	}
}

// settle drains the queue if o is still pending
func (s *State) settle(c *Context, o *override) {
	if s.isPending(o) {
		s.drain(c)
	}
}

func (s *State) shift() RenderFunc {
	o := s.stack[0]
	s.stack[0] = nil
	s.stack = s.stack[1:]
	return o.fn
}

func (s *State) isPending(o *override) bool {
	for _, p := range s.stack {
		if p == o {
			return true
		}
	}
	return false
}

func (s *State) register(name string, a Action) {
	if n := len(s.frames); n > 0 {
		s.frames[n-1] = append(s.frames[n-1], entry{name: name, action: a})
		return
	}
	s.actions[name] = append(s.actions[name], a)
}
