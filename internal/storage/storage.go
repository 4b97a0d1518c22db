package storage

import (
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Assets is a read-only view of the browser client's files.
type Assets struct {
	fs afero.Fs
}

// NewAssets wraps fsys as a read-only asset tree.
func NewAssets(fsys afero.Fs) *Assets {
	return &Assets{fs: afero.NewReadOnlyFs(fsys)}
}

// NewDirAssets serves the files below dir on the local disk.
func NewDirAssets(dir string) *Assets {
	return NewAssets(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// Available reports whether the asset root exists and holds an index page.
func (a *Assets) Available() bool {
	ok, err := afero.Exists(a.fs, "index.html")
	return err == nil && ok
}

// Open opens a file for reading.
func (a *Assets) Open(path string) (io.ReadCloser, error) {
	return a.fs.OpenFile(path, os.O_RDONLY, 0)
}

// FS exposes the assets as an io/fs filesystem for HTTP serving.
func (a *Assets) FS() fs.FS {
	return afero.NewIOFS(a.fs)
}
