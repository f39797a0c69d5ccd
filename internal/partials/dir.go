package partials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Extensions tried, in order, when a partial name has none
var Extensions = []string{".hbs", ".handlebars", ".html"}

// DirSource serves partials from a file system. A partial named
// "layouts/base" is read from layouts/base.hbs, layouts/base.handlebars or
// layouts/base.html.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource creates a source reading from fsys
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Load reads the partial file for name
func (d *DirSource) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return "", NotFound(name)
	}

	candidates := []string{clean}
	if path.Ext(clean) == "" {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, clean+ext)
		}
	}

	for _, file := range candidates {
		data, err := fs.ReadFile(d.fsys, file)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read partial %s: %w", file, err)
		}
	}

	return "", NotFound(name)
}

// Names lists every partial the source can serve, without extensions
func (d *DirSource) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(d.fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		for _, ext := range Extensions {
			if strings.HasSuffix(p, ext) {
				names = append(names, strings.TrimSuffix(p, ext))
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list partials: %w", err)
	}
	return names, nil
}
