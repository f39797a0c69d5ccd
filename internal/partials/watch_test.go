package partials

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layouts"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 16)
	require.NoError(t, Watch(ctx, dir, func(name string) { changed <- name }, zap.NewNop()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layouts", "base.hbs"), []byte("base"), 0o644))

	select {
	case name := <-changed:
		assert.Equal(t, "layouts/base", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), func(string) {}, zap.NewNop())
	assert.Error(t, err)
}

func TestPartialName(t *testing.T) {
	tests := []struct {
		file string
		name string
		ok   bool
	}{
		{"/tpl/layouts/base.hbs", "layouts/base", true},
		{"/tpl/header.html", "header", true},
		{"/tpl/notes.txt", "", false},
		{"/other/base.hbs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			name, ok := partialName("/tpl", tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}
