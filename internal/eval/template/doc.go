// Package template provides the Handlebars engine that renders pages.
//
// The engine registers the page helpers with raymond and rewrites every call
// to one of them before parsing, so that templates may pass fewer parameters
// than a helper declares, or more for the variadic ones.
//
// Example usage:
//
//	engine := template.NewEngine(
//	    template.WithSource(partials.NewDirSource(os.DirFS("templates"))),
//	    template.WithLocale("fr"),
//	)
//
//	out, err := engine.RenderPage(ctx, "pages/home", map[string]interface{}{
//	    "title": "Accueil",
//	    "posts": posts,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Layouts:
//
//	{{!-- layouts/base --}}
//	<title>{{#block "title"}}Site{{/block}}</title>
//	<main>{{{block "body"}}}</main>
//
//	{{!-- pages/home --}}
//	{{#extend "layouts/base"}}
//	  {{#content "title" mode="append"}} - {{title}}{{/content}}
//	  {{#content "body"}}{{#each posts}}<p>{{timeago date}}</p>{{/each}}{{/content}}
//	{{/extend}}
//
// Built-in helpers:
//   - Conditionals: any, empty, lengthEqual, contains, and, or, is, isnt,
//     gt, gte, lt, lte, ifEven, ifNth, in, isArray, ifAny, compare, when
//   - Sequences: first, last, after, before, array, join, len
//   - Layout: extend, embed, block, content
//   - Loop: repeat (sets @index, @first, @last and @contextPath)
//   - Formatting: timeago, moment, link, serialize, uniqueId, target, slug
//   - Text: uppercase, lowercase, trim, default, eq, ne
//
// A conditional called with too few parameters renders its inverse section.
// `when` evaluates a CEL expression against the current context, bound to
// `ctx`, and needs an engine built WithEvaluator.
package template
