// Package entities contains main entities of service.
package entities

import (
	"time"
)

// User ...
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Location is a geo point with optional human-readable address.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// CreditLog is an immutable geo-tagged record of user's action.
type CreditLog struct {
	ID        int64
	Owner     int64
	Username  string // owner's username, filled on read
	Amount    float64
	Type      string
	Start     Location
	End       Location
	CreatedAt time.Time
}
