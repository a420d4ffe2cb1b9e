// Package devicestore persists the string key/value pairs that live on the
// device: the cart, the device session id and the saved login.
package devicestore

import (
	"context"
	"errors"
	"sync"
)

const (
	KeyCart      = "cart_v1"
	KeySessionID = "cart_session_id"
	KeyAuth      = "auth_session"
)

var ErrWriteFailed = errors.New("device store: write failed")

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemStore keeps values in memory. FailWrites makes Set and Delete fail.
type MemStore struct {
	mu         sync.Mutex
	m          map[string]string
	FailWrites bool
	FailReads  bool
}

func NewMemStore() *MemStore { return &MemStore{m: map[string]string{}} }

func (s *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return "", false, errors.New("device store: read failed")
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrWriteFailed
	}
	s.m[key] = value
	return nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return ErrWriteFailed
	}
	delete(s.m, key)
	return nil
}
