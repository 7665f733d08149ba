package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
)

// hashLength is the length of a hex-encoded SHA-256 digest.
const hashLength = 64

// FSStore is a filesystem-based content-addressed store. Rendered documents
// are kept in a sharded layout:
//
//	<root>/
//	  objects/
//	    ab/
//	      cd1234... (first 2 chars = subdir, rest = filename)
//
// Writes are idempotent: an existing identifier's content is never
// overwritten, so storing the same bytes twice is a no-op second time.
type FSStore struct {
	root string
	mu   sync.RWMutex
}

// NewFSStore creates a store rooted at the given path. The directory
// structure is created eagerly; call Validate before serving traffic.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "objects"), 0750); err != nil {
		return nil, gerrors.StorageUnavailable(root, err)
	}
	return &FSStore{root: root}, nil
}

// Root returns the configured storage root.
func (fs *FSStore) Root() string {
	return fs.root
}

// Validate confirms the backing location exists and is writable by probing
// an actual write. A failure here is fatal to startup: a configured store
// is a declared capability, not best-effort.
func (fs *FSStore) Validate() error {
	info, err := os.Stat(fs.root)
	if err != nil {
		return gerrors.StorageUnavailable(fs.root, err)
	}
	if !info.IsDir() {
		return gerrors.StorageUnavailable(fs.root, fmt.Errorf("not a directory"))
	}

	probe := filepath.Join(fs.root, ".write-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0600); err != nil {
		return gerrors.StorageUnavailable(fs.root, err)
	}
	_ = os.Remove(probe)
	return nil
}

// Store computes the content-addressed identifier for content, writes the
// bytes under it if not already present, and returns the identifier. The
// second return reports whether the object already existed (deduplicated).
func (fs *FSStore) Store(content []byte) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	objectPath := fs.objectPath(hash)
	if _, err := os.Stat(objectPath); err == nil {
		return hash, true, nil
	}

	if err := os.MkdirAll(filepath.Dir(objectPath), 0750); err != nil {
		return "", false, gerrors.StorageWriteFailed(err)
	}
	if err := os.WriteFile(objectPath, content, 0600); err != nil {
		return "", false, gerrors.StorageWriteFailed(err)
	}

	return hash, false, nil
}

// IsHash reports whether candidate is syntactically a well-formed
// identifier: exactly 64 lowercase hex characters. This is the guard that
// keeps path-traversal input (`..`, separators, anything else) away from
// Path; callers must treat a negative result as "not found".
func (fs *FSStore) IsHash(candidate string) bool {
	if len(candidate) != hashLength {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Path maps a validated identifier to its physical storage location.
// Callers must gate on IsHash first; Path performs no validation of its own.
func (fs *FSStore) Path(hash string) string {
	return fs.objectPath(hash)
}

// Open reads an object's bytes back by identifier. Malformed identifiers
// and absent objects both surface as ErrNotFound.
func (fs *FSStore) Open(hash string) ([]byte, error) {
	if !fs.IsHash(hash) {
		return nil, ErrNotFound{Hash: hash}
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	// #nosec G304 - objectPath is constructed from a validated hash
	data, err := os.ReadFile(fs.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Hash: hash}
		}
		return nil, gerrors.Wrap(err, gerrors.CategoryStorage, gerrors.SeverityError, "read object")
	}
	return data, nil
}

// Exists checks if an object with the given hash exists.
func (fs *FSStore) Exists(hash string) (bool, error) {
	if !fs.IsHash(hash) {
		return false, nil
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(fs.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// objectPath returns the filesystem path for an object.
func (fs *FSStore) objectPath(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(fs.root, "objects", hash)
	}
	return filepath.Join(fs.root, "objects", hash[:2], hash[2:])
}
