// Package store provides the two persistence backends for collections: a
// local file-backed key-value store and a remote PostgreSQL document store.
package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Local is the durable key-value adapter. Each collection key maps to one
// JSON file under the data directory. All operations are best-effort:
// failures are logged and never surfaced to the caller, so a full disk or a
// corrupt file degrades to an empty collection instead of an error.
type Local struct {
	dir string
}

// NewLocal creates the data directory if needed and returns the adapter.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: dir}, nil
}

// Dir returns the backing directory.
func (l *Local) Dir() string { return l.dir }

// Load returns the raw blob stored under key, or nil if the key is missing
// or unreadable.
func (l *Local) Load(key string) []byte {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[LOCAL] read %s failed: %v", key, err)
		}
		return nil
	}
	return data
}

// Save writes the blob under key. Failures are logged, not returned; the
// in-memory state is authoritative regardless. Each write goes through its
// own temp file so concurrent saves for one key cannot tear each other and
// the rename installs a complete document or nothing.
func (l *Local) Save(key string, blob []byte) {
	tmp, err := os.CreateTemp(l.dir, key+".*.tmp")
	if err != nil {
		log.Printf("[LOCAL] write %s failed: %v", key, err)
		return
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		log.Printf("[LOCAL] write %s failed: %v", key, err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		log.Printf("[LOCAL] write %s failed: %v", key, err)
		return
	}
	if err := os.Rename(tmp.Name(), l.path(key)); err != nil {
		os.Remove(tmp.Name())
		log.Printf("[LOCAL] rename %s failed: %v", key, err)
	}
}

// Delete removes the blob stored under key.
func (l *Local) Delete(key string) {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		log.Printf("[LOCAL] delete %s failed: %v", key, err)
	}
}

// GetSetting reads a single-line settings value (e.g. the remote database
// URL entered through the settings surface). Returns "" when unset.
func (l *Local) GetSetting(key string) string {
	return strings.TrimSpace(string(l.Load(key)))
}

// SetSetting stores a single-line settings value.
func (l *Local) SetSetting(key, value string) {
	l.Save(key, []byte(value))
}

func (l *Local) path(key string) string {
	return filepath.Join(l.dir, key+".json")
}
