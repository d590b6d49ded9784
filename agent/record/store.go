// Package record persists the snapshots produced by terminal tool actions: placed orders,
// resolved fraud cases and saved leads.
//
// Every file-backed store reads the whole collection, mutates it in memory and rewrites it.
// Writes inside one process are serialised and the rewrite goes through a temp file plus
// rename, but two processes sharing a file still race: the last writer wins. Use
// BunStore when several processes write the same domain.
package record

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
	ErrCorrupt     = errors.New("record store is corrupt")
)

// Identified is implemented by every persisted record.
type Identified interface {
	RecordID() string
}

// Store is the one seam between tools and persistence.
type Store[T Identified] interface {
	// Load returns every record in insertion order. A missing backing file is an empty store.
	Load(ctx context.Context) ([]T, error)
	// Append adds rec and saves the collection. Duplicate ids are rejected.
	Append(ctx context.Context, rec T) error
	// UpdateByID applies mutate to the stored record and saves the collection.
	// mutate must not change the record id.
	UpdateByID(ctx context.Context, id string, mutate func(*T) error) (T, error)
}

// FindByID scans the store linearly.
func FindByID[T Identified](ctx context.Context, store Store[T], id string) (T, error) {
	var zero T
	all, err := store.Load(ctx)
	if err != nil {
		return zero, err
	}
	for _, rec := range all {
		if rec.RecordID() == id {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Latest returns the most recently appended record.
func Latest[T Identified](ctx context.Context, store Store[T]) (T, error) {
	var zero T
	all, err := store.Load(ctx)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, ErrNotFound
	}
	return all[len(all)-1], nil
}

// Exists reports whether id is already taken.
func Exists[T Identified](ctx context.Context, store Store[T], id string) (bool, error) {
	_, err := FindByID(ctx, store, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Seed copies every record of src into dst when dst is still empty and returns how many
// were copied. A dst that already holds records is left alone.
func Seed[T Identified](ctx context.Context, dst, src Store[T]) (int, error) {
	existing, err := dst.Load(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	records, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed source: %w", err)
	}
	for i, rec := range records {
		if err := dst.Append(ctx, rec); err != nil {
			return i, fmt.Errorf("seed %s: %w", rec.RecordID(), err)
		}
	}
	return len(records), nil
}

func indexOf[T Identified](records []T, id string) int {
	for i, rec := range records {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}

func applyUpdate[T Identified](records []T, id string, mutate func(*T) error) (T, error) {
	var zero T
	i := indexOf(records, id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := records[i]
	if err := mutate(&updated); err != nil {
		return zero, err
	}
	if updated.RecordID() != id {
		return zero, fmt.Errorf("update of %s changed its id to %s", id, updated.RecordID())
	}
	records[i] = updated
	return updated, nil
}
