package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DirStore writes one JSON file per record, named by the caller. Load returns the records
// sorted by file name.
type DirStore[T Identified] struct {
	dir      string
	fileName func(T) string
	mu       sync.Mutex
}

func NewDirStore[T Identified](dir string, fileName func(T) string) *DirStore[T] {
	return &DirStore[T]{dir: dir, fileName: fileName}
}

func (s *DirStore[T]) Dir() string { return s.dir }

type dirEntry[T Identified] struct {
	path string
	rec  T
}

func (s *DirStore[T]) entries() ([]dirEntry[T], error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	out := make([]dirEntry[T], 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
		}
		out = append(out, dirEntry[T]{path: path, rec: rec})
	}
	return out, nil
}

func (s *DirStore[T]) Load(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rec)
	}
	return out, nil
}

func (s *DirStore[T]) Append(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.rec.RecordID() == rec.RecordID() {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
		}
	}
	path := filepath.Join(s.dir, s.fileName(rec))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateID, path)
	}
	return s.save(path, rec)
}

func (s *DirStore[T]) UpdateByID(_ context.Context, id string, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	entries, err := s.entries()
	if err != nil {
		return zero, err
	}
	for _, e := range entries {
		if e.rec.RecordID() != id {
			continue
		}
		updated := e.rec
		if err := mutate(&updated); err != nil {
			return zero, err
		}
		if updated.RecordID() != id {
			return zero, fmt.Errorf("update of %s changed its id to %s", id, updated.RecordID())
		}
		if err := s.save(e.path, updated); err != nil {
			return zero, err
		}
		return updated, nil
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *DirStore[T]) save(path string, rec T) error {
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return writeFileAtomic(path, out)
}
