// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/Decentr-net/hermes/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// FeedLimit is maximal count of credit logs returned in a feed.
const FeedLimit = 128

// MaxPasswordLength is maximal password length in bytes. bcrypt ignores everything beyond it.
const MaxPasswordLength = 72

var (
	// ErrAlreadyExists is returned on signing up with taken username.
	ErrAlreadyExists = errors.New("username is already taken")
	// ErrPasswordTooLong is returned on signing up with password longer than MaxPasswordLength bytes.
	ErrPasswordTooLong = errors.New("password is too long")
	// ErrBadCredentials is returned when username or password is wrong.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrSelfFollow is returned when user tries to follow himself.
	ErrSelfFollow = errors.New("users cannot follow themselves")
	// ErrUnknownTarget is returned when followed user doesn't exist.
	ErrUnknownTarget = errors.New("target user not found")
	// ErrUnknownOwner is returned when credit log owner doesn't exist.
	ErrUnknownOwner = errors.New("owner not found")
	// ErrUnknownIdentity is returned when requesting user doesn't exist.
	ErrUnknownIdentity = errors.New("user not found")
)

// NewCreditLog contains caller-supplied fields of credit log.
type NewCreditLog struct {
	Amount float64
	Type   string
	Start  entities.Location
	End    entities.Location
}

// Service ...
type Service interface {
	SignUp(ctx context.Context, username, password string) (*entities.User, error)
	SignIn(ctx context.Context, username, password string) (*entities.User, error)

	Follow(ctx context.Context, follower int64, followee string) error
	Unfollow(ctx context.Context, follower int64, followee string) error

	LogCredit(ctx context.Context, owner int64, l NewCreditLog) (*entities.CreditLog, error)
	ListCredits(ctx context.Context, owner int64) ([]*entities.CreditLog, error)

	// PersonalFeed returns latest credit logs of the user and users followed by him.
	PersonalFeed(ctx context.Context, id int64) ([]*entities.CreditLog, error)
	// GlobalFeed returns latest credit logs of all users.
	GlobalFeed(ctx context.Context) ([]*entities.CreditLog, error)
}
