// Package file is a kv.Store persisted as one JSON document on disk.
//
// Every operation holds an advisory file lock, so a CLI invocation and a
// running daemon pointed at the same file do not clobber each other.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/MrSnakeDoc/vidmark/internal/kv"
)

type Store struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

var _ kv.Store = (*Store)(nil)

// New returns a store writing to path. The file is created lazily on first Set.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var found bool
	err := s.withLock(ctx, func(doc map[string]json.RawMessage) (bool, error) {
		raw, ok := doc[key]
		if !ok {
			return false, nil
		}
		if err := kv.Decode(key, raw, dest); err != nil {
			return false, err
		}
		found = true
		return false, nil
	})
	return found, err
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := kv.Encode(key, value)
	if err != nil {
		return err
	}
	return s.withLock(ctx, func(doc map[string]json.RawMessage) (bool, error) {
		doc[key] = raw
		return true, nil
	})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.withLock(ctx, func(doc map[string]json.RawMessage) (bool, error) {
		if _, ok := doc[key]; !ok {
			return false, nil
		}
		delete(doc, key)
		return true, nil
	})
}

// withLock loads the document under lock, runs fn and writes the document
// back when fn reports a change.
func (s *Store) withLock(ctx context.Context, fn func(doc map[string]json.RawMessage) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := s.read()
	if err != nil {
		return err
	}

	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.write(doc)
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return doc, nil
}

func (s *Store) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
