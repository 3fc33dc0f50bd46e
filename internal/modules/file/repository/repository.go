package repository

import (
	"io"
)

// Repository defines the interface for the lecture file store.
// Lecture rows reference stored files by the path Save returns.
type Repository interface {
	Save(name string, data []byte) (string, error)
	Open(path string) (io.ReadCloser, error)
	// Remove deletes the file at path; a missing file is not an error.
	Remove(path string) error
	Exists(path string) (bool, error)
	// Resolve maps a bare file name to its path inside the store.
	Resolve(name string) (string, error)
	Dir() string
}
