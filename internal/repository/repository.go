// Package repository persists registration records.
//
// The whole collection lives as one JSON array under a fixed key and is
// rewritten on every append. Backends only need an atomic read-modify-write
// of a single key; memory, file, Postgres, Redis and SQLite are provided.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-landing/internal/model"
)

// StorageKey is the key the registration collection is stored under.
const StorageKey = "codezen_registrations"

// DefaultQuotaBytes mirrors the usual per-origin local storage allowance.
const DefaultQuotaBytes = 5 << 20

// ErrKeyNotFound is returned by Backend.Get when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned when a write would exceed the store quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// errCorrupt marks stored bytes that are not a valid collection.
var errCorrupt = errors.New("stored collection is corrupt")

// Backend is a key/value medium with an atomic read-modify-write.
type Backend interface {
	// Get returns the value at key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Update reads key (found=false when absent), passes it to fn and
	// stores what fn returns. If fn returns an error nothing is written.
	// Concurrent Updates of the same key must not interleave.
	Update(ctx context.Context, key string, fn func(cur []byte, found bool) ([]byte, error)) error
}

// StorageErrorKind classifies why persistence failed.
type StorageErrorKind string

const (
	KindUnavailable   StorageErrorKind = "unavailable"
	KindCorrupt       StorageErrorKind = "corrupt"
	KindQuotaExceeded StorageErrorKind = "quota_exceeded"
)

// StorageError is returned for every persistence failure. Callers decide
// whether to log, retry or ignore it; it is never shown to the visitor.
type StorageError struct {
	Kind StorageErrorKind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(op string, err error) *StorageError {
	kind := KindUnavailable
	switch {
	case errors.Is(err, errCorrupt):
		kind = KindCorrupt
	case errors.Is(err, ErrQuotaExceeded):
		kind = KindQuotaExceeded
	}
	return &StorageError{Kind: kind, Op: op, Err: err}
}

// RegistrationStore is the append-only record keeper for submissions.
type RegistrationStore struct {
	backend    Backend
	key        string
	quotaBytes int
}

// Option customises a RegistrationStore.
type Option func(*RegistrationStore)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *RegistrationStore) { s.key = key }
}

// WithQuota caps the serialised collection size. Zero or less disables it.
func WithQuota(bytes int) Option {
	return func(s *RegistrationStore) { s.quotaBytes = bytes }
}

// NewRegistrationStore constructs a RegistrationStore on top of backend.
func NewRegistrationStore(backend Backend, opts ...Option) *RegistrationStore {
	s := &RegistrationStore{backend: backend, key: StorageKey, quotaBytes: DefaultQuotaBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds rec to the end of the collection. An absent collection starts
// empty; a corrupt one is left untouched and reported as KindCorrupt.
// Every failure is a *StorageError.
func (s *RegistrationStore) Append(ctx context.Context, rec model.RegistrationRecord) error {
	err := s.backend.Update(ctx, s.key, func(cur []byte, found bool) ([]byte, error) {
		records, err := decode(cur, found)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)

		out, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode collection: %w", err)
		}
		if s.quotaBytes > 0 && len(out) > s.quotaBytes {
			return nil, fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(out), s.quotaBytes)
		}
		return out, nil
	})
	if err != nil {
		return newStorageError("append", err)
	}
	return nil
}

// List returns the whole collection in submission order.
func (s *RegistrationStore) List(ctx context.Context) ([]model.RegistrationRecord, error) {
	raw, err := s.backend.Get(ctx, s.key)
	found := true
	if errors.Is(err, ErrKeyNotFound) {
		found, err = false, nil
	}
	if err != nil {
		return nil, newStorageError("list", err)
	}
	records, err := decode(raw, found)
	if err != nil {
		return nil, newStorageError("list", err)
	}
	return records, nil
}

func decode(raw []byte, found bool) ([]model.RegistrationRecord, error) {
	if !found || len(raw) == 0 {
		return []model.RegistrationRecord{}, nil
	}
	var records []model.RegistrationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if records == nil {
		// "null" is valid JSON but not a collection.
		return nil, fmt.Errorf("%w: not a list", errCorrupt)
	}
	return records, nil
}
