// Package partials provides the sources layout partials are loaded from.
//
// A Source maps a partial name to its template text. Unknown names yield an
// error wrapping ErrNotFound, which the template engine reports as a missing
// partial.
//
// Example usage:
//
//	src := partials.Chain{
//	    partials.NewDirSource(os.DirFS("./templates")),
//	    partials.NewRedisSource(client, "render:partials"),
//	    partials.MapSource{"inline": "<p>{{text}}</p>"},
//	}
//
//	text, err := src.Load(ctx, "layouts/base")
//	if errors.Is(err, partials.ErrNotFound) {
//	    // no source knows the name
//	}
//
// Watch reports edits below a partials directory, so compiled templates can
// be dropped while the process runs:
//
//	err := partials.Watch(ctx, "./templates", func(name string) {
//	    engine.ClearCache()
//	}, logger)
package partials
