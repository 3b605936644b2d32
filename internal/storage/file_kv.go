package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileKV keeps one JSON file per key in a directory. Writes go through a
// temp file and a rename so a crash never leaves a half-written value.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

func NewFileKV(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}

func (s *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileKV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, value) {
		return nil
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	_, err = tmp.Write(value)
	if err1 := tmp.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
