package impl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/service"
	"github.com/Decentr-net/hermes/internal/storage"
	"github.com/Decentr-net/hermes/internal/storage/memory"
)

var ctx = context.Background()

// clock returns time which moves forward by one second on every tick.
type clock struct {
	t time.Time
}

func (c *clock) tick() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newMemoryService(t *testing.T) (srv, *clock) {
	c := &clock{t: time.Unix(1000, 0).UTC()}

	s := newTestService(memory.New())
	s.now = c.tick

	return s, c
}

func mustSignUp(t *testing.T, s service.Service, username string) *entities.User {
	u, err := s.SignUp(ctx, username, "password")
	require.NoError(t, err)
	return u
}

func mustLog(t *testing.T, s service.Service, owner int64, amount float64) *entities.CreditLog {
	l, err := s.LogCredit(ctx, owner, service.NewCreditLog{
		Amount: amount,
		Type:   "ride",
		Start:  entities.Location{Lat: 1, Lng: 1},
		End:    entities.Location{Lat: 2, Lng: 2},
	})
	require.NoError(t, err)
	return l
}

func requireSorted(t *testing.T, logs []*entities.CreditLog) {
	require.True(t, sort.SliceIsSorted(logs, func(i, j int) bool {
		return storage.Less(logs[i], logs[j])
	}))
}

func TestFeed_FollowScenario(t *testing.T) {
	s, _ := newMemoryService(t)

	bob := mustSignUp(t, s, "bob")
	mustSignUp(t, s, "alice")

	alice, err := s.SignIn(ctx, "alice", "password")
	require.NoError(t, err)

	require.NoError(t, s.Follow(ctx, alice.ID, "bob"))

	l, err := s.LogCredit(ctx, bob.ID, service.NewCreditLog{
		Amount: 3,
		Type:   "ride",
		Start:  entities.Location{Lat: 1, Lng: 1},
		End:    entities.Location{Lat: 2, Lng: 2},
	})
	require.NoError(t, err)

	feed, err := s.PersonalFeed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, l, feed[0])
	assert.Equal(t, "bob", feed[0].Username)
	assert.EqualValues(t, 3, feed[0].Amount)
	assert.Equal(t, "ride", feed[0].Type)
}

func TestFeed_PersonalFeedOwnership(t *testing.T) {
	s, _ := newMemoryService(t)

	alice := mustSignUp(t, s, "alice")
	bob := mustSignUp(t, s, "bob")
	carol := mustSignUp(t, s, "carol")

	require.NoError(t, s.Follow(ctx, alice.ID, "bob"))

	for i := 0; i < 5; i++ {
		mustLog(t, s, alice.ID, float64(i))
		mustLog(t, s, bob.ID, float64(i))
		mustLog(t, s, carol.ID, float64(i))
	}

	feed, err := s.PersonalFeed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 10)
	requireSorted(t, feed)

	for _, v := range feed {
		assert.Contains(t, []int64{alice.ID, bob.ID}, v.Owner)
	}

	// bob doesn't follow alice
	feed, err = s.PersonalFeed(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, feed, 5)
	for _, v := range feed {
		assert.Equal(t, bob.ID, v.Owner)
	}

	require.NoError(t, s.Unfollow(ctx, alice.ID, "bob"))

	feed, err = s.PersonalFeed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 5)
}

func TestFeed_TiesOrderedByID(t *testing.T) {
	s, _ := newMemoryService(t)
	timestamp := time.Unix(5000, 0).UTC()
	s.now = func() time.Time { return timestamp }

	alice := mustSignUp(t, s, "alice")

	first := mustLog(t, s, alice.ID, 1)
	second := mustLog(t, s, alice.ID, 2)

	for i := 0; i < 3; i++ {
		feed, err := s.PersonalFeed(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, second.ID, feed[0].ID)
		assert.Equal(t, first.ID, feed[1].ID)
	}
}

func TestFeed_Limit(t *testing.T) {
	s, _ := newMemoryService(t)

	alice := mustSignUp(t, s, "alice")
	bob := mustSignUp(t, s, "bob")
	require.NoError(t, s.Follow(ctx, alice.ID, "bob"))

	var last *entities.CreditLog
	for i := 0; i < 100; i++ {
		mustLog(t, s, alice.ID, float64(i))
		last = mustLog(t, s, bob.ID, float64(i))
	}

	feed, err := s.PersonalFeed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, service.FeedLimit)
	requireSorted(t, feed)
	assert.Equal(t, last.ID, feed[0].ID)
}

func TestFeed_Global(t *testing.T) {
	s, _ := newMemoryService(t)

	const users = 3

	ids := make([]int64, users)
	for i := range ids {
		ids[i] = mustSignUp(t, s, fmt.Sprintf("user%d", i)).ID
	}

	for i := 0; i < 10; i++ {
		mustLog(t, s, ids[i%users], float64(i))
	}

	feed, err := s.GlobalFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 10)
	requireSorted(t, feed)

	owners := map[int64]struct{}{}
	for _, v := range feed {
		owners[v.Owner] = struct{}{}
	}
	assert.Len(t, owners, users)

	for i := 0; i < 200; i++ {
		mustLog(t, s, ids[i%users], float64(i))
	}

	feed, err = s.GlobalFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, service.FeedLimit)
	requireSorted(t, feed)
}

func TestFeed_SelfFollow(t *testing.T) {
	s, _ := newMemoryService(t)

	alice := mustSignUp(t, s, "alice")

	require.Equal(t, service.ErrSelfFollow, s.Follow(ctx, alice.ID, "alice"))

	followees, err := s.s.ListFollowees(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, followees)
}

func TestFeed_FollowIsIdempotent(t *testing.T) {
	s, _ := newMemoryService(t)

	alice := mustSignUp(t, s, "alice")
	bob := mustSignUp(t, s, "bob")

	require.NoError(t, s.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, s.Follow(ctx, alice.ID, "bob"))

	followees, err := s.s.ListFollowees(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{bob.ID}, followees)

	require.NoError(t, s.Unfollow(ctx, bob.ID, "alice"))
	require.NoError(t, s.Unfollow(ctx, alice.ID, "bob"))
	require.NoError(t, s.Unfollow(ctx, alice.ID, "bob"))

	followees, err = s.s.ListFollowees(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, followees)
}

func TestFeed_DuplicateSignUpKeepsCredentials(t *testing.T) {
	s, _ := newMemoryService(t)

	_, err := s.SignUp(ctx, "alice", "first")
	require.NoError(t, err)

	_, err = s.SignUp(ctx, "alice", "second")
	require.Equal(t, service.ErrAlreadyExists, err)

	_, err = s.SignIn(ctx, "alice", "first")
	require.NoError(t, err)

	_, wrongPasswordErr := s.SignIn(ctx, "alice", "second")
	_, unknownUserErr := s.SignIn(ctx, "mallory", "second")
	require.Equal(t, service.ErrBadCredentials, wrongPasswordErr)
	require.Equal(t, wrongPasswordErr, unknownUserErr)
}

func TestFeed_PasswordLengthInBytes(t *testing.T) {
	s, _ := newMemoryService(t)

	_, err := s.SignUp(ctx, "alice", strings.Repeat("é", 37))
	require.Equal(t, service.ErrPasswordTooLong, err)

	password := strings.Repeat("a", service.MaxPasswordLength)
	_, err = s.SignUp(ctx, "alice", password)
	require.NoError(t, err)

	_, err = s.SignIn(ctx, "alice", password+"b")
	require.Equal(t, service.ErrBadCredentials, err)

	_, err = s.SignIn(ctx, "alice", password)
	require.NoError(t, err)
}

func TestFeed_UnknownIdentity(t *testing.T) {
	s, _ := newMemoryService(t)

	_, err := s.PersonalFeed(ctx, 42)
	require.Equal(t, service.ErrUnknownIdentity, err)

	_, err = s.LogCredit(ctx, 42, service.NewCreditLog{Type: "ride"})
	require.Equal(t, service.ErrUnknownOwner, err)

	require.Equal(t, service.ErrUnknownTarget, s.Follow(ctx, 42, "nobody"))
}
