// Package layout implements layout inheritance for page templates.
//
// A page extends a parent layout and injects content into the named blocks
// the layout declares. The mechanism keeps two pieces of per-render state:
// a queue of overrides (the bodies of extend calls) and, per block name, the
// ordered list of content actions registered by those bodies.
//
// Example usage:
//
//	layouts := layout.ResolverFunc(func(name string) (layout.Partial, error) {
//	    if name != "base" {
//	        return nil, layout.MissingPartial(name)
//	    }
//	    return layout.PartialFunc(func(c *layout.Context) (string, error) {
//	        return "<title>" + c.Block("title", func(*layout.Context) string { return "Home" }) + "</title>", nil
//	    }), nil
//	})
//
//	page := layout.NewContext(data)
//	out, err := page.Embed(layouts, "base", func(c *layout.Context) string {
//	    c.Content("title", layout.ModeAppend, func(*layout.Context) string { return " - Docs" })
//	    return ""
//	})
//	// out: <title>Home - Docs</title>
//
// Fold rules:
//   - append: accumulated + rendering
//   - prepend: rendering + accumulated
//   - replace: rendering (only the value folded so far is discarded)
//
// Content drains pending overrides before it registers, so a content call
// placed after a nested extend lands after that layout's own content.
// Register skips the drain for callers that render content eagerly. Either
// way, content registered by an override folds after the content of every
// override queued behind it: the page extending a layout has the last word.
//
// Contexts are layered: reads fall back to the parent, writes stay local.
// Extend shares the layout state of its caller, Embed starts a fresh one.
package layout
