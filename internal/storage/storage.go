// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Decentr-net/hermes/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// ErrAlreadyExists is returned when unique constraint is violated.
var ErrAlreadyExists = fmt.Errorf("already exists")

// Storage provides methods for interacting with database.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, username string, passwordHash []byte) (*entities.User, error)
	GetUser(ctx context.Context, id int64) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)

	Follow(ctx context.Context, follower, followee int64) error
	Unfollow(ctx context.Context, follower, followee int64) error
	ListFollowees(ctx context.Context, follower int64) ([]int64, error)

	CreateCreditLog(ctx context.Context, p *CreateCreditLogParams) (*entities.CreditLog, error)
	ListCreditLogs(ctx context.Context, p *ListCreditLogsParams) ([]*entities.CreditLog, error)
}

// CreateCreditLogParams ...
type CreateCreditLogParams struct {
	Owner     int64
	Amount    float64
	Type      string
	Start     entities.Location
	End       entities.Location
	CreatedAt time.Time
}

// ListCreditLogsParams ...
type ListCreditLogsParams struct {
	// Owners filters logs by owner. Nil means all owners, empty slice means none.
	Owners []int64
	// Limit caps returned logs count. Zero means no limit.
	Limit uint16
}

// Less reports whether a should be placed before b in a feed:
// newer logs go first, ties are broken by greater id.
func Less(a, b *entities.CreditLog) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}

	return a.ID > b.ID
}
