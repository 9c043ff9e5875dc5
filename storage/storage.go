// Package storage is a minimal collaborator exercising the "external
// object storage" interface spec.md §6.4 describes as out of scope for
// the codec core itself. It is grounded on
// external_storage/examples/scli.rs's ExternalStorage trait and its
// Local/Noop backend constructors; cloud SDK backends (S3, GCS, Azure,
// HDFS) are deliberately not implemented.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pingcap/errors"
)

// Backend is the write/read contract every storage implementation
// satisfies (spec.md §6.4), mirroring ExternalStorage::write /
// ExternalStorage::read.
type Backend interface {
	// Write stores size bytes read from r under name.
	Write(name string, r io.Reader, size int64) error
	// Read opens name for reading. The caller must Close it.
	Read(name string) (io.ReadCloser, error)
}

// Noop discards every write and never has anything to read, matching
// make_noop_backend. It is the CLI's default backend.
type Noop struct{}

func (Noop) Write(name string, r io.Reader, size int64) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func (Noop) Read(name string) (io.ReadCloser, error) {
	return nil, errors.Annotatef(ErrNotFound, "noop backend has no file %q", name)
}

// ErrNotFound is returned when a backend has no file under the
// requested name.
var ErrNotFound = errors.New("storage: file not found")

// Local is a filesystem-backed Backend rooted at a base directory,
// matching make_local_backend.
type Local struct {
	Base string
}

// NewLocal constructs a Local backend rooted at base, creating the
// directory if it does not exist.
func NewLocal(base string) (*Local, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, errors.Trace(err)
	}
	return &Local{Base: base}, nil
}

// resolve joins name under Base. Prefixing with "/" before Clean is the
// traversal guard: Clean collapses any leading "../" into "/", so the
// joined path can never escape Base regardless of how Base itself is
// rooted.
func (l *Local) resolve(name string) (string, error) {
	return filepath.Join(l.Base, filepath.Clean("/"+name)), nil
}

func (l *Local) Write(name string, r io.Reader, size int64) error {
	p, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Trace(err)
	}
	f, err := os.Create(p)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	written, err := io.Copy(f, r)
	if err != nil {
		return errors.Trace(err)
	}
	if size >= 0 && written != size {
		return errors.Annotatef(ErrNotFound, "short write for %q: wrote %d, want %d", name, written, size)
	}
	return nil
}

func (l *Local) Read(name string) (io.ReadCloser, error) {
	p, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, errors.Annotatef(ErrNotFound, "%q", name)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return f, nil
}
