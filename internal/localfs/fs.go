package localfs

import (
	"os"
	"time"

	"github.com/spf13/afero"
)

// Info is a snapshot of one local path, or its explicit absence.
type Info struct {
	Path    string
	Exists  bool
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// FS is the local filesystem the sync engine reads and writes. Production
// code uses the OS filesystem; tests swap in an in-memory one.
type FS struct {
	fs afero.Fs
}

// New returns an FS backed by the operating system.
func New() *FS {
	return &FS{fs: afero.NewOsFs()}
}

// NewWithFs returns an FS backed by the given afero filesystem.
func NewWithFs(backing afero.Fs) *FS {
	return &FS{fs: backing}
}

// Stat probes a path. A missing path is not an error: it yields
// Exists=false with a nil error. Every other stat failure propagates.
func (f *FS) Stat(path string) (Info, error) {
	stat, err := f.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{Path: path}, nil
		}
		return Info{Path: path}, err
	}
	return Info{
		Path:    path,
		Exists:  true,
		IsDir:   stat.IsDir(),
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
	}, nil
}

// MkdirAll creates a directory and any missing parents.
func (f *FS) MkdirAll(path string) error {
	return f.fs.MkdirAll(path, 0755)
}

// Create opens a path for writing, truncating any existing content.
func (f *FS) Create(path string) (afero.File, error) {
	return f.fs.Create(path)
}

// Open opens a path for reading.
func (f *FS) Open(path string) (afero.File, error) {
	return f.fs.Open(path)
}

// Chtimes sets the access and modification timestamps of an existing path.
func (f *FS) Chtimes(path string, atime, mtime time.Time) error {
	return f.fs.Chtimes(path, atime, mtime)
}

// ReadDir lists a directory's entries.
func (f *FS) ReadDir(path string) ([]os.FileInfo, error) {
	return afero.ReadDir(f.fs, path)
}
