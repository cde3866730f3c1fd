package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
)

// KVStore persists keys as one JSON document on disk. Several processes may
// share the file: every operation re-reads the document under an advisory
// flock on path+".lock", and writes replace the file through a temp file and
// rename while the exclusive lock is held.
type KVStore struct {
	path string

	// mu serializes handles within one process; flock does not.
	mu sync.Mutex
}

type document map[string]json.RawMessage

// Open prepares path, creating parent directories; a missing file is an
// empty store. A file that does not decode is rejected.
func Open(path string) (*KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s := &KVStore{path: path}
	if err := s.view(func(document) {}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.view(func(doc document) {
		if v, ok := doc[key]; ok {
			value, found = append([]byte(nil), v...), true
		}
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Set stores value; it must be valid JSON since the file is a JSON object.
// The value is kept in compact form, which is what Get returns.
func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return fmt.Errorf("value for %s is not valid JSON: %w", key, err)
	}
	return s.update(func(doc document) bool {
		doc[key] = compact.Bytes()
		return true
	})
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	return s.update(func(doc document) bool {
		if _, ok := doc[key]; !ok {
			return false
		}
		delete(doc, key)
		return true
	})
}

// Update runs fn while holding the exclusive file lock, so read and write
// are atomic across processes sharing the file.
func (s *KVStore) Update(_ context.Context, key string, fn func(current []byte, ok bool) ([]byte, error)) error {
	var fnErr error
	err := s.update(func(doc document) bool {
		cur, ok := doc[key]
		next, err := fn(append([]byte(nil), cur...), ok)
		if err != nil {
			fnErr = err
			return false
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, next); err != nil {
			fnErr = fmt.Errorf("value for %s is not valid JSON: %w", key, err)
			return false
		}
		doc[key] = compact.Bytes()
		return true
	})
	if err != nil {
		return err
	}
	return fnErr
}

func (s *KVStore) List(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := s.view(func(doc document) {
		for k := range doc {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KVStore) view(fn func(document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	fn(doc)
	return nil
}

// update applies fn to the current document and writes it back when fn
// reports a change.
func (s *KVStore) update(fn func(document) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	if !fn(doc) {
		return nil
	}
	return s.write(doc)
}

func (s *KVStore) lock(how int) (func(), error) {
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open state lock: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock state: %w", err)
	}
	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}

func (s *KVStore) read() (document, error) {
	doc := make(document)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *KVStore) write(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
