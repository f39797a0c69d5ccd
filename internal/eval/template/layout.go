package template

import (
	"github.com/mailgun/raymond/v2"
	"github.com/spf13/cast"

	"github.com/aescanero/dago-node-renderer/internal/layout"
)

// extendHelper binds extend, or embed when fresh is set. The block body is
// queued as the override that registers the page's content.
func extendHelper(fresh bool) func(name, custom interface{}, options *raymond.Options) raymond.SafeString {
	return func(name, custom interface{}, options *raymond.Options) raymond.SafeString {
		c := call{options}
		scope := c.scope()

		var fn layout.RenderFunc
		if c.isBlock() {
			fn = func(lc *layout.Context) string {
				return options.FnCtxData(lc.This(), c.frame(lc))
			}
		}

		extend := scope.Extend
		if fresh {
			extend = scope.Embed
		}

		out, err := extend(c.run().resolver(options.DataFrame()), cast.ToString(name), fn, customLayer(custom), c.hash())
		if err != nil {
			panic(err)
		}
		return raymond.SafeString(out)
	}
}

func blockHelper(name interface{}, options *raymond.Options) raymond.SafeString {
	c := call{options}

	var fn layout.RenderFunc
	if c.isBlock() {
		fn = func(*layout.Context) string { return options.Fn() }
	}

	return raymond.SafeString(c.scope().Block(cast.ToString(name), fn))
}

// contentHelper registers its block under name, or reports whether anything
// was registered under name when used without a block. The block is rendered
// right away: raymond can only render it while the helper runs.
func contentHelper(name interface{}, options *raymond.Options) interface{} {
	c := call{options}
	scope := c.scope()
	key := cast.ToString(name)

	if !c.isBlock() {
		return scope.HasContent(key)
	}

	text := options.Fn()
	scope.Register(key, layout.ParseMode(options.HashStr("mode")), func(*layout.Context) string {
		return text
	})

	return ""
}

func customLayer(custom interface{}) map[string]interface{} {
	if custom == nil {
		return nil
	}
	m, err := cast.ToStringMapE(custom)
	if err != nil {
		return nil
	}
	return m
}
