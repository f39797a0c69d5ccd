// Package router selects the page a render request renders.
//
// Rules are CEL expressions evaluated in order against the page data, bound
// to `ctx`. The first rule that holds wins; when none does the fallback page
// is used.
//
// Example:
//
//	config := &router.Config{
//	    Rules: []router.Rule{
//	        {Condition: "ctx.user.admin == true", Page: "pages/admin"},
//	        {Condition: "size(ctx.items) == 0", Page: "pages/empty"},
//	    },
//	    Fallback: "pages/list",
//	}
//	result, err := r.Route(ctx, data, config)
//	// result.Page, result.PathTaken ("rule" or "fallback")
//
// LoadConfig reads the same configuration from a YAML file.
package router
