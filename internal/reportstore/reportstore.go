// Package reportstore implements the single permitted write beyond core
// scope (spec §1's Non-goals carve-out: "persistence beyond writing a
// finished report file"): handing a serialized SessionReport to a sink.
// The default sink is a local file; s3_store.go adds an alternate sink
// behind a build tag, grounded on the teacher's own optional-dependency
// convention for its upload store.
package reportstore

import (
	"os"

	"github.com/reactcheck/reactcheck/internal/errs"
	"github.com/reactcheck/reactcheck/internal/model"
	"github.com/reactcheck/reactcheck/internal/report"
)

// Store writes a finished SessionReport somewhere durable and returns an
// opaque location string (a file path, a bucket key, ...) on success.
type Store interface {
	Write(r model.SessionReport) (location string, err error)
}

// FileStore writes the report's JSON encoding to a path on the local
// filesystem.
type FileStore struct {
	Path string
	Perm os.FileMode
}

// NewFileStore creates a FileStore writing to path with mode 0644.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, Perm: 0o644}
}

// Write implements Store.
func (f *FileStore) Write(r model.SessionReport) (string, error) {
	data, err := report.Marshal(r)
	if err != nil {
		return "", err
	}
	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(f.Path, data, perm); err != nil {
		return "", errs.Wrap(errs.ReportWriteFailed, "reportstore.FileStore.Write", err)
	}
	return f.Path, nil
}
