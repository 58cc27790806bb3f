// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/service"
	"github.com/Decentr-net/hermes/internal/storage"
)

var log = logrus.WithField("layer", "service").WithField("package", "impl")

// service ...
type srv struct {
	s storage.Storage

	cost int
	// dummyHash is compared against when user is not found, so signing in
	// with unknown username takes as long as with a wrong password.
	dummyHash []byte
	now       func() time.Time
}

// New creates new instance of service.
func New(s storage.Storage, bcryptCost int) service.Service {
	dummy, err := bcrypt.GenerateFromPassword([]byte("hermes"), bcryptCost)
	if err != nil {
		log.WithError(err).Fatal("failed to generate dummy hash")
	}

	return srv{
		s:         s,
		cost:      bcryptCost,
		dummyHash: dummy,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func (s srv) SignUp(ctx context.Context, username, password string) (*entities.User, error) {
	if len(password) > service.MaxPasswordLength {
		return nil, service.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.s.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, service.ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to create user on storage side: %w", err)
	}

	return u, nil
}

func (s srv) SignIn(ctx context.Context, username, password string) (*entities.User, error) {
	if len(password) > service.MaxPasswordLength {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password[:service.MaxPasswordLength]))
		return nil, service.ErrBadCredentials
	}

	u, err := s.s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, service.ErrBadCredentials
		}

		return nil, fmt.Errorf("failed to get user from storage: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, service.ErrBadCredentials
		}

		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	return u, nil
}

func (s srv) Follow(ctx context.Context, follower int64, followee string) error {
	target, err := s.s.GetUserByUsername(ctx, followee)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrUnknownTarget
		}

		return fmt.Errorf("failed to get followee from storage: %w", err)
	}

	if target.ID == follower {
		return service.ErrSelfFollow
	}

	if err := s.s.Follow(ctx, follower, target.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// either side may have gone, the follower is checked first.
			if err := s.ensureUser(ctx, follower); err != nil {
				return err
			}
			return service.ErrUnknownTarget
		}

		return fmt.Errorf("failed to follow on storage side: %w", err)
	}

	return nil
}

func (s srv) Unfollow(ctx context.Context, follower int64, followee string) error {
	target, err := s.s.GetUserByUsername(ctx, followee)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("failed to get followee from storage: %w", err)
	}

	if err := s.s.Unfollow(ctx, follower, target.ID); err != nil {
		return fmt.Errorf("failed to unfollow on storage side: %w", err)
	}

	return nil
}

func (s srv) LogCredit(ctx context.Context, owner int64, l service.NewCreditLog) (*entities.CreditLog, error) {
	out, err := s.s.CreateCreditLog(ctx, &storage.CreateCreditLogParams{
		Owner:     owner,
		Amount:    l.Amount,
		Type:      l.Type,
		Start:     l.Start,
		End:       l.End,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrUnknownOwner
		}

		return nil, fmt.Errorf("failed to create credit log on storage side: %w", err)
	}

	return out, nil
}

func (s srv) ListCredits(ctx context.Context, owner int64) ([]*entities.CreditLog, error) {
	if err := s.ensureUser(ctx, owner); err != nil {
		return nil, err
	}

	out, err := s.s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{
		Owners: []int64{owner},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list credit logs from storage: %w", err)
	}

	return out, nil
}

func (s srv) PersonalFeed(ctx context.Context, id int64) ([]*entities.CreditLog, error) {
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}

	followees, err := s.s.ListFollowees(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list followees from storage: %w", err)
	}

	owners := make([]int64, 0, len(followees)+1)
	owners = append(owners, id)
	for _, v := range followees {
		if v != id {
			owners = append(owners, v)
		}
	}

	out, err := s.s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{
		Owners: owners,
		Limit:  service.FeedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list credit logs from storage: %w", err)
	}

	return out, nil
}

func (s srv) GlobalFeed(ctx context.Context) ([]*entities.CreditLog, error) {
	out, err := s.s.ListCreditLogs(ctx, &storage.ListCreditLogsParams{
		Limit: service.FeedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list credit logs from storage: %w", err)
	}

	return out, nil
}

func (s srv) ensureUser(ctx context.Context, id int64) error {
	if _, err := s.s.GetUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrUnknownIdentity
		}

		return fmt.Errorf("failed to get user from storage: %w", err)
	}

	return nil
}
