// Package cel provides a CEL (Common Expression Language) evaluator for the
// `when` template helper and the page routing rules.
//
// Expressions see the current render context as the map variable ctx.
//
// Example usage:
//
//	evaluator, err := cel.NewEvaluator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data := map[string]interface{}{
//	    "user": map[string]interface{}{"role": "admin"},
//	    "items": []interface{}{1, 2, 3},
//	}
//
//	ok, err := evaluator.Test(ctx, "ctx.user.role == 'admin' && size(ctx.items) > 2", data)
//	// ok == true
//
// In templates:
//
//	{{#when "ctx.user.role == 'admin'"}}<a href="/admin">Admin</a>{{/when}}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Arithmetic: +, -, *, /, %
//   - List operations: in, size
//   - Map access: ctx.field, ctx["field"], has(ctx.field)
package cel
