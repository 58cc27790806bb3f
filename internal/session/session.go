// Package session maps opaque session tokens to user ids.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Decentr-net/hermes/internal/memory"
)

// ErrNotFound is returned when token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store issues and resolves session tokens.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

type store struct {
	m   *memory.Storage
	ttl time.Duration
}

// NewMemoryStore creates in-process session store.
func NewMemoryStore(m *memory.Storage, ttl time.Duration) Store {
	return store{
		m:   m,
		ttl: ttl,
	}
}

func (s store) Create(_ context.Context, userID int64) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	s.m.Set(token.String(), []byte(strconv.FormatInt(userID, 10)), s.ttl)

	return token.String(), nil
}

func (s store) Resolve(_ context.Context, token string) (int64, error) {
	b := s.m.Get(token)
	if b == nil {
		return 0, ErrNotFound
	}

	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}

	return id, nil
}

func (s store) Delete(_ context.Context, token string) error {
	s.m.Delete(token)
	return nil
}

func (s store) TTL() time.Duration {
	return s.ttl
}
