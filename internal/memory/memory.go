// Package memory contains in-process key/value storage with expiration.
package memory

import (
	"sync"
	"time"
)

type item struct {
	content   []byte
	expiresAt time.Time
}

// Storage is a concurrency-safe key/value storage where every key has its own ttl.
type Storage struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewStorage returns storage. If cleanupInterval is positive, expired keys are
// removed in background with given interval until Close is called.
func NewStorage(cleanupInterval time.Duration) *Storage {
	s := &Storage{
		items: map[string]item{},
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}

	return s
}

// Get returns content by key or nil if key is missing or expired.
func (s *Storage) Get(key string) []byte {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	if !s.now().Before(v.expiresAt) {
		s.Delete(key)
		return nil
	}

	return v.content
}

// Set puts content with given ttl.
func (s *Storage) Set(key string, content []byte, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = item{
		content:   content,
		expiresAt: s.now().Add(duration),
	}
}

// Delete ...
func (s *Storage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
}

// Close stops background cleanup.
func (s *Storage) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

func (s *Storage) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.deleteExpired()
		}
	}
}

func (s *Storage) deleteExpired() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.items {
		if !now.Before(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
