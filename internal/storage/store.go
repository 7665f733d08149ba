// Package storage provides content-addressable storage for rendered documents.
// Objects are stored by their SHA-256 content hash, enabling deduplication:
// identical content always maps to the same identifier and is written once.
package storage

// ErrNotFound is returned when an object doesn't exist.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	return "object not found: " + e.Hash
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
