package storage

import (
	"io"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "index.html", []byte("<h1>Topics</h1>"), 0o644))
	require.NoError(t, afero.WriteFile(memFs, "js/app.js", []byte("console.log('hi')"), 0o644))

	assets := NewAssets(memFs)
	assert.True(t, assets.Available())

	t.Run("Open", func(t *testing.T) {
		f, err := assets.Open("js/app.js")
		require.NoError(t, err)
		defer f.Close()

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "console.log('hi')", string(data))
	})

	t.Run("FS", func(t *testing.T) {
		data, err := fs.ReadFile(assets.FS(), "index.html")
		require.NoError(t, err)
		assert.Equal(t, "<h1>Topics</h1>", string(data))
	})

	t.Run("read only", func(t *testing.T) {
		_, err := assets.fs.Create("evil.html")
		assert.Error(t, err)
	})
}

func TestAssets_Unavailable(t *testing.T) {
	assert.False(t, NewAssets(afero.NewMemMapFs()).Available())
	assert.False(t, NewDirAssets(t.TempDir()).Available())
}

func TestNewDirAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), dir+"/index.html", []byte("ok"), 0o644))

	assets := NewDirAssets(dir)
	require.True(t, assets.Available())

	data, err := fs.ReadFile(assets.FS(), "index.html")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}
