// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"
)

// ErrStoreUnavailable is returned by [FlakyStore] while failures are switched on.
var ErrStoreUnavailable = errors.New("store unavailable")

// FlakyStore is an in-memory document store whose loads and saves can be made to fail.
//
// It satisfies the repositories Store interface without importing it.
type FlakyStore[T any] struct {
	mu       sync.Mutex
	data     T
	failLoad bool
	failSave bool
	saves    int
}

// NewFlakyStore creates a store holding data.
func NewFlakyStore[T any](data T) *FlakyStore[T] {
	return &FlakyStore[T]{data: data}
}

func (s *FlakyStore[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		var zero T
		return zero, ErrStoreUnavailable
	}
	return s.data, nil
}

func (s *FlakyStore[T]) Save(doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return ErrStoreUnavailable
	}
	s.data = doc
	s.saves++
	return nil
}

// FailSaves switches save failures on or off.
func (s *FlakyStore[T]) FailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = fail
}

// FailLoads switches load failures on or off.
func (s *FlakyStore[T]) FailLoads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = fail
}

// Data returns the last successfully saved document.
func (s *FlakyStore[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Saves counts successful saves.
func (s *FlakyStore[T]) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
