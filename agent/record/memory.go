package record

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore[T Identified] struct {
	mu      sync.Mutex
	records []T
}

func NewMemoryStore[T Identified](seed ...T) *MemoryStore[T] {
	return &MemoryStore[T]{records: slices.Clone(seed)}
}

func (s *MemoryStore[T]) Load(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records), nil
}

func (s *MemoryStore[T]) Append(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.records, rec.RecordID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore[T]) UpdateByID(_ context.Context, id string, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyUpdate(s.records, id, mutate)
}
