package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/storage"
)

var ctx = context.Background()

func TestMem_CreateUser_Concurrent(t *testing.T) {
	s := New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.CreateUser(ctx, "alice", []byte("hash"))
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			require.True(t, errors.Is(err, storage.ErrAlreadyExists))
		}()
	}

	wg.Wait()
	require.Equal(t, 1, created)

	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []byte("hash"), u.PasswordHash)

	_, err = s.GetUserByUsername(ctx, "Alice")
	require.Equal(t, storage.ErrNotFound, err)
}

func TestMem_Follow(t *testing.T) {
	s := New()

	a, err := s.CreateUser(ctx, "a", nil)
	require.NoError(t, err)
	b, err := s.CreateUser(ctx, "b", nil)
	require.NoError(t, err)

	require.Equal(t, storage.ErrNotFound, s.Follow(ctx, a.ID, 100))

	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follow(ctx, a.ID, b.ID))

	f, err := s.ListFollowees(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, f)

	f, err = s.ListFollowees(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, f)

	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))

	f, err = s.ListFollowees(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, f)
}

func TestMem_ListCreditLogs(t *testing.T) {
	s := New()

	a, err := s.CreateUser(ctx, "a", nil)
	require.NoError(t, err)
	b, err := s.CreateUser(ctx, "b", nil)
	require.NoError(t, err)

	_, err = s.CreateCreditLog(ctx, &storage.CreateCreditLogParams{Owner: 100})
	require.Equal(t, storage.ErrNotFound, err)

	timestamp := time.Unix(100, 0)
	create := func(owner int64, offset time.Duration) *entities.CreditLog {
		l, err := s.CreateCreditLog(ctx, &storage.CreateCreditLogParams{
			Owner:     owner,
			Amount:    1,
			Type:      "walk",
			Start:     entities.Location{Lat: 1, Lng: 2, Address: "from"},
			End:       entities.Location{Lat: 3, Lng: 4},
			CreatedAt: timestamp.Add(offset),
		})
		require.NoError(t, err)
		return l
	}

	l1 := create(a.ID, 0)
	l2 := create(b.ID, time.Second)
	l3 := create(a.ID, time.Second)
	l4 := create(b.ID, -time.Second)

	require.Equal(t, "a", l1.Username)
	require.Equal(t, "from", l1.Start.Address)

	ids := func(l []*entities.CreditLog) []int64 {
		out := make([]int64, len(l))
		for i, v := range l {
			out[i] = v.ID
		}
		return out
	}

	all, err := s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{})
	require.NoError(t, err)
	require.Equal(t, []int64{l3.ID, l2.ID, l1.ID, l4.ID}, ids(all))

	limited, err := s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{l3.ID, l2.ID}, ids(limited))

	onlyA, err := s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{Owners: []int64{a.ID}})
	require.NoError(t, err)
	require.Equal(t, []int64{l3.ID, l1.ID}, ids(onlyA))

	none, err := s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{Owners: []int64{}})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMem_InTx(t *testing.T) {
	s := New()

	require.NoError(t, s.InTx(ctx, func(s storage.Storage) error {
		u, err := s.CreateUser(ctx, "a", nil)
		require.NoError(t, err)

		_, err = s.GetUser(ctx, u.ID)
		return err
	}))

	_, err := s.GetUserByUsername(ctx, "a")
	require.NoError(t, err)
}
