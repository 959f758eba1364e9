// Package inmemory provides a thread-safe in-memory credential store
// implementing [credential.Store].
//
// It is intended for use in tests and prototyping. Do not use it in production.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hasbyte1/go-credentials/credential"
)

// Store keeps credential state keyed by record id.
type Store struct {
	mu      sync.RWMutex
	records map[string]credential.State
}

// New creates an empty [Store].
func New() *Store {
	return &Store{records: make(map[string]credential.State)}
}

// Create stores a snapshot of rec. Returns [credential.ErrDuplicateRecord]
// when the id or a non-empty username is already taken.
func (s *Store) Create(_ context.Context, rec credential.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID()]; exists {
		return fmt.Errorf("%w: %s", credential.ErrDuplicateRecord, rec.ID())
	}
	if name := rec.Username(); name != "" {
		for _, st := range s.records {
			if st.Username == name {
				return fmt.Errorf("%w: username %s", credential.ErrDuplicateRecord, name)
			}
		}
	}
	s.records[rec.ID()] = credential.Snapshot(rec)
	return nil
}

// Find returns the account stored under id. Returns
// [credential.ErrRecordNotFound] when absent.
func (s *Store) Find(_ context.Context, id string) (*credential.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.records[id]
	if !ok {
		return nil, credential.ErrRecordNotFound
	}
	return credential.AccountFromState(st), nil
}

// FindByUsername returns the account with the given username.
func (s *Store) FindByUsername(_ context.Context, username string) (*credential.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.records {
		if st.Username == username {
			return credential.AccountFromState(st), nil
		}
	}
	return nil, credential.ErrRecordNotFound
}

// UpdateFields implements [credential.Updater]. Only the named fields are
// copied from rec; all of them are applied under one lock.
func (s *Store) UpdateFields(_ context.Context, rec credential.Record, fields ...credential.Field) error {
	src := credential.Snapshot(rec)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.records[rec.ID()]
	if !ok {
		return credential.ErrRecordNotFound
	}
	for _, f := range fields {
		switch f {
		case credential.FieldEncodedPassword:
			st.EncodedPassword = src.EncodedPassword
		case credential.FieldSalt:
			st.Salt = src.Salt
		case credential.FieldStrategy:
			st.Strategy = src.Strategy
		case credential.FieldRequiresNewPassword:
			st.RequiresNewPassword = src.RequiresNewPassword
		case credential.FieldPasswordChangedAt:
			st.PasswordChangedAt = src.PasswordChangedAt
		default:
			return fmt.Errorf("%w: %q", credential.ErrUnknownField, f)
		}
	}
	s.records[rec.ID()] = st
	return nil
}

// Delete removes the record stored under id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return credential.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ credential.Store = (*Store)(nil)
