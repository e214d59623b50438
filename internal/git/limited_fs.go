package git

import (
	"errors"
	"os"
	"sync"

	billy "github.com/go-git/go-billy/v5"
)

const (
	// DefaultMaxFiles bounds the number of files a clone may create
	DefaultMaxFiles = 10 * 1000

	// DefaultMaxTotalSize bounds the bytes a clone may write (256MB)
	DefaultMaxTotalSize = 256 * 1024 * 1024
)

// ErrCloneTooLarge is returned when a clone exceeds its file or size limits
var ErrCloneTooLarge = errors.New("repository exceeds clone size limits")

// limitedFS caps the files and bytes written to an in-memory filesystem
type limitedFS struct {
	billy.Filesystem

	mu       sync.Mutex
	maxFiles int
	maxBytes int64
	files    int
	written  int64
}

func newLimitedFS(fs billy.Filesystem, maxFiles int, maxBytes int64) *limitedFS {
	return &limitedFS{Filesystem: fs, maxFiles: maxFiles, maxBytes: maxBytes}
}

func (l *limitedFS) Create(filename string) (billy.File, error) {
	return l.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (l *limitedFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if err := l.addFile(); err != nil {
			return nil, err
		}
	}
	f, err := l.Filesystem.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

func (l *limitedFS) TempFile(dir, prefix string) (billy.File, error) {
	if err := l.addFile(); err != nil {
		return nil, err
	}
	f, err := l.Filesystem.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

func (l *limitedFS) addFile() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.files >= l.maxFiles {
		return ErrCloneTooLarge
	}
	l.files++
	return nil
}

func (l *limitedFS) addBytes(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.written+int64(n) > l.maxBytes {
		return ErrCloneTooLarge
	}
	l.written += int64(n)
	return nil
}

type limitedFile struct {
	billy.File
	fs *limitedFS
}

func (f *limitedFile) Write(p []byte) (int, error) {
	if err := f.fs.addBytes(len(p)); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}
