// Package memory is an in-process implementation of storage interface.
// It is meant for single-process deployments and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/storage"
)

// nolint:gochecknoglobals
var now = func() time.Time { return time.Now().UTC() }

type edge struct {
	follower int64
	followee int64
}

type state struct {
	mu sync.RWMutex

	lastUserID int64
	lastLogID  int64

	users      map[int64]*entities.User
	usernames  map[string]int64
	follows    map[edge]struct{}
	creditLogs []*entities.CreditLog
}

type mem struct {
	*state
	// locked is set when storage is used within InTx.
	locked bool
}

// New creates new instance of in-memory storage.
func New() storage.Storage {
	return mem{
		state: &state{
			users:     map[int64]*entities.User{},
			usernames: map[string]int64{},
			follows:   map[edge]struct{}{},
		},
	}
}

// InTx runs f holding exclusive lock, so f observes and applies changes atomically.
// Changes already applied by f are not reverted when f fails.
func (s mem) InTx(_ context.Context, f func(s storage.Storage) error) error {
	if !s.locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	return f(mem{state: s.state, locked: true})
}

func (s mem) Ping(_ context.Context) error {
	return nil
}

func (s mem) rlock() func() {
	if s.locked {
		return func() {}
	}

	s.mu.RLock()
	return s.mu.RUnlock
}

func (s mem) lock() func() {
	if s.locked {
		return func() {}
	}

	s.mu.Lock()
	return s.mu.Unlock
}

func (s mem) CreateUser(_ context.Context, username string, passwordHash []byte) (*entities.User, error) {
	defer s.lock()()

	if _, ok := s.usernames[username]; ok {
		return nil, storage.ErrAlreadyExists
	}

	s.lastUserID++
	u := &entities.User{
		ID:           s.lastUserID,
		Username:     username,
		PasswordHash: append([]byte(nil), passwordHash...),
		CreatedAt:    now(),
	}

	s.users[u.ID] = u
	s.usernames[username] = u.ID

	return copyUser(u), nil
}

func (s mem) GetUser(_ context.Context, id int64) (*entities.User, error) {
	defer s.rlock()()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return copyUser(u), nil
}

func (s mem) GetUserByUsername(_ context.Context, username string) (*entities.User, error) {
	defer s.rlock()()

	id, ok := s.usernames[username]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return copyUser(s.users[id]), nil
}

func (s mem) Follow(_ context.Context, follower, followee int64) error {
	defer s.lock()()

	if _, ok := s.users[follower]; !ok {
		return storage.ErrNotFound
	}

	if _, ok := s.users[followee]; !ok {
		return storage.ErrNotFound
	}

	s.follows[edge{follower: follower, followee: followee}] = struct{}{}

	return nil
}

func (s mem) Unfollow(_ context.Context, follower, followee int64) error {
	defer s.lock()()

	delete(s.follows, edge{follower: follower, followee: followee})

	return nil
}

func (s mem) ListFollowees(_ context.Context, follower int64) ([]int64, error) {
	defer s.rlock()()

	out := []int64{}
	for e := range s.follows {
		if e.follower == follower {
			out = append(out, e.followee)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

func (s mem) CreateCreditLog(_ context.Context, p *storage.CreateCreditLogParams) (*entities.CreditLog, error) {
	defer s.lock()()

	u, ok := s.users[p.Owner]
	if !ok {
		return nil, storage.ErrNotFound
	}

	s.lastLogID++
	l := &entities.CreditLog{
		ID:        s.lastLogID,
		Owner:     p.Owner,
		Username:  u.Username,
		Amount:    p.Amount,
		Type:      p.Type,
		Start:     p.Start,
		End:       p.End,
		CreatedAt: p.CreatedAt.UTC(),
	}

	s.creditLogs = append(s.creditLogs, l)

	c := *l
	return &c, nil
}

func (s mem) ListCreditLogs(_ context.Context, p *storage.ListCreditLogsParams) ([]*entities.CreditLog, error) {
	defer s.rlock()()

	var owners map[int64]struct{}
	if p.Owners != nil {
		owners = make(map[int64]struct{}, len(p.Owners))
		for _, v := range p.Owners {
			owners[v] = struct{}{}
		}
	}

	out := []*entities.CreditLog{}
	for _, v := range s.creditLogs {
		if owners != nil {
			if _, ok := owners[v.Owner]; !ok {
				continue
			}
		}

		c := *v
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool { return storage.Less(out[i], out[j]) })

	if p.Limit > 0 && len(out) > int(p.Limit) {
		out = out[:p.Limit]
	}

	return out, nil
}

func copyUser(u *entities.User) *entities.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}
