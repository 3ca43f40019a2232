// Package store is the record store every component persists through.
//
// A collection is an ordered list of records saved and loaded as a whole.
// Plain reads never fail: missing or unreadable data loads as an empty
// collection. Read-modify-write paths use LoadForUpdate, which reports
// unreadable data instead. Writes overwrite the whole collection in a single backend call. The store
// does no locking of its own; concurrent writers to one collection lose
// updates unless they coordinate through a lock.Locker.
package store

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/logging"
)

const (
	CollectionUsers         = "users"
	CollectionBookings      = "bookings"
	CollectionReference     = "reference"
	CollectionSlotInventory = "slot_inventory"
)

var (
	// ErrCollectionNotFound is returned by backends for a collection that was never saved.
	ErrCollectionNotFound = errors.New("collection not found")

	ErrRecordNotFound = apperr.New(apperr.ErrNotFound, "record not found")
)

// Backend persists encoded collections by name.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Name() string
}

// Collection is a typed view over one named collection.
type Collection[T any] struct {
	backend Backend
	name    string
	logger  *zap.Logger
}

func NewCollection[T any](backend Backend, name string, logger *zap.Logger) *Collection[T] {
	if backend == nil {
		panic("store: backend required")
	}
	return &Collection[T]{
		backend: backend,
		name:    name,
		logger:  logging.OrNop(logger).With(zap.String("collection", name)),
	}
}

func (c *Collection[T]) Name() string { return c.name }

// Load returns the records of the collection in saved order.
func (c *Collection[T]) Load(ctx context.Context) []T {
	records, err := c.LoadForUpdate(ctx)
	if err != nil {
		c.logger.Warn("load failed, treating collection as empty",
			zap.String("backend", c.backend.Name()), zap.Error(err))
		return []T{}
	}
	return records
}

// LoadForUpdate is the load behind every read-modify-write. A collection
// that was never saved is empty; a backend failure or undecodable data is
// an apperr.ErrStore error so the caller never overwrites what it could not
// read.
func (c *Collection[T]) LoadForUpdate(ctx context.Context) ([]T, error) {
	data, err := c.backend.Get(ctx, c.name)
	if errors.Is(err, ErrCollectionNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", apperr.ErrStore, c.name, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", apperr.ErrStore, c.name, err)
	}
	if records == nil {
		return []T{}, nil
	}
	return records, nil
}

// Save overwrites the collection with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", apperr.ErrStore, c.name, err)
	}
	if err := c.backend.Put(ctx, c.name, data); err != nil {
		return fmt.Errorf("%w: save %s: %v", apperr.ErrStore, c.name, err)
	}
	return nil
}

// Find returns the first record matching match.
func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, bool) {
	for _, rec := range c.Load(ctx) {
		if match(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every record matching match, in saved order.
func (c *Collection[T]) Filter(ctx context.Context, match func(T) bool) []T {
	out := []T{}
	for _, rec := range c.Load(ctx) {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Append adds rec at the end of the collection.
func (c *Collection[T]) Append(ctx context.Context, rec T) error {
	records, err := c.LoadForUpdate(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return c.Save(ctx, records)
}

// Update applies mutate to the first record matching match and saves the
// collection. A mutate error aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, match func(T) bool, mutate func(*T) error) (T, error) {
	var zero T
	records, err := c.LoadForUpdate(ctx)
	if err != nil {
		return zero, err
	}
	for i := range records {
		if !match(records[i]) {
			continue
		}
		if err := mutate(&records[i]); err != nil {
			return zero, err
		}
		if err := c.Save(ctx, records); err != nil {
			return zero, err
		}
		return records[i], nil
	}
	return zero, ErrRecordNotFound
}
