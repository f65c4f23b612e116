package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// kvFile is a flat JSON document on disk, the Go stand-in for the mobile
// platform's string key-value storage. Every mutation rewrites the whole
// file via a temp-file rename so a crash never leaves a half-written blob.
type kvFile struct {
	mu   sync.Mutex
	path string
}

func newKVFile(path string) *kvFile {
	return &kvFile{path: path}
}

func (f *kvFile) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	kv := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &kv); err != nil {
			// Corrupt store: start over rather than wedge the client.
			return map[string]json.RawMessage{}, nil
		}
	}
	return kv, nil
}

func (f *kvFile) save(kv map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}

// Get unmarshals the stored value for key into out. Returns false when
// the key is absent.
func (f *kvFile) Get(key string, out interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return false, err
	}
	raw, ok := kv[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode key %q: %w", key, err)
	}
	return true, nil
}

func (f *kvFile) Set(key string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	kv[key] = raw
	return f.save(kv)
}

// Delete removes keys in a single write, mirroring multiRemove semantics:
// either all named keys are gone afterwards or the file is untouched.
func (f *kvFile) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(kv, k)
	}
	return f.save(kv)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return nil
}

func storePath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}
