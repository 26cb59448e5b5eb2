// Package loader reads per-directory settings documents.
//
// A Loader knows the fixed settings file name, the document format implied by
// that name, and the file system to read from. A missing file is not an error:
// LoadDir returns nil, nil so callers can treat it as "no settings".
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// DefaultFilename is the settings file looked up in every directory.
const DefaultFilename = ".sublime-settings"

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// BillyFS adapts a billy.Filesystem to FileSystem.
type BillyFS struct {
	fs billy.Filesystem
}

// NewBillyFS wraps a billy filesystem.
func NewBillyFS(bfs billy.Filesystem) *BillyFS {
	return &BillyFS{fs: bfs}
}

// ReadFile reads the entire file at path.
func (b *BillyFS) ReadFile(path string) ([]byte, error) {
	return util.ReadFile(b.fs, path)
}

// Stat returns file info for path.
func (b *BillyFS) Stat(path string) (fs.FileInfo, error) {
	return b.fs.Stat(path)
}

// DefaultFS returns the OS file system rooted at "/", so absolute paths
// resolve as they would with package os.
func DefaultFS() FileSystem {
	return NewBillyFS(osfs.New(string(filepath.Separator)))
}

// Transform rewrites raw document bytes before they are decoded.
// dir is the directory the document was read from.
type Transform func(dir string, data []byte) []byte

// Loader loads the settings document of a single directory.
type Loader struct {
	fs        FileSystem
	filename  string
	format    Format
	transform Transform
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the file system documents are read from.
func WithFileSystem(fsys FileSystem) Option {
	return func(l *Loader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithTransform sets a hook applied to the raw text before decoding.
func WithTransform(t Transform) Option {
	return func(l *Loader) {
		l.transform = t
	}
}

// New creates a loader for the given settings file name.
// An empty name selects DefaultFilename.
func New(filename string, opts ...Option) *Loader {
	if filename == "" {
		filename = DefaultFilename
	}
	l := &Loader{
		fs:       DefaultFS(),
		filename: filename,
		format:   FormatFor(filename),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Filename returns the settings file name this loader looks for.
func (l *Loader) Filename() string {
	return l.filename
}

// Format returns the document format used for decoding.
func (l *Loader) Format() Format {
	return l.format
}

// Path returns the settings file path inside dir.
func (l *Loader) Path(dir string) string {
	return filepath.Join(dir, l.filename)
}

// LoadDir reads and decodes the settings document in dir.
// Returns nil, nil if the document doesn't exist.
// Read failures are returned as *ReadError, decode failures as *ParseError.
func (l *Loader) LoadDir(dir string) (map[string]any, error) {
	path := l.Path(dir)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, &ReadError{Path: path, Err: err}
	}

	if l.transform != nil {
		data = l.transform(dir, data)
	}

	return Decode(l.format, path, data)
}

// ReadError represents a failure to read a settings document.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading settings file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
