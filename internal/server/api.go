package server

import (
	"time"

	"github.com/Decentr-net/hermes/internal/entities"
)

const maxBodySize = 4 << 10

// Credentials ...
// swagger:model
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// LogCreditRequest ...
// swagger:model
type LogCreditRequest struct {
	Amount    *float64 `json:"amount" validate:"required"`
	Type      string   `json:"type" validate:"required,max=64"`
	StartLat  *float64 `json:"startLat" validate:"required"`
	StartLng  *float64 `json:"startLng" validate:"required"`
	StartAddr string   `json:"startAddr" validate:"max=256"`
	EndLat    *float64 `json:"endLat" validate:"required"`
	EndLng    *float64 `json:"endLng" validate:"required"`
	EndAddr   string   `json:"endAddr" validate:"max=256"`
}

// SessionResponse ...
// swagger:model
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
	User          User `json:"user"`
}

// User is a public projection of user.
// swagger:model
type User struct {
	Username string `json:"username"`
}

// CreditLog ...
// swagger:model
type CreditLog struct {
	ID        int64     `json:"id"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	StartLat  float64   `json:"startLat"`
	StartLng  float64   `json:"startLng"`
	StartAddr string    `json:"startAddr"`
	EndLat    float64   `json:"endLat"`
	EndLng    float64   `json:"endLng"`
	EndAddr   string    `json:"endAddr"`
	CreatedAt time.Time `json:"createdAt"`
	User      User      `json:"user"`
}

// Empty is returned by endpoints which have nothing to say on success.
// swagger:model
type Empty struct{}

// Health ...
// swagger:model
type Health struct {
	Status string `json:"status"`
}

func toAPICreditLog(l *entities.CreditLog) CreditLog {
	return CreditLog{
		ID:        l.ID,
		Amount:    l.Amount,
		Type:      l.Type,
		StartLat:  l.Start.Lat,
		StartLng:  l.Start.Lng,
		StartAddr: l.Start.Address,
		EndLat:    l.End.Lat,
		EndLng:    l.End.Lng,
		EndAddr:   l.End.Address,
		CreatedAt: l.CreatedAt,
		User: User{
			Username: l.Username,
		},
	}
}

func toAPICreditLogs(l []*entities.CreditLog) []CreditLog {
	out := make([]CreditLog, len(l))
	for i, v := range l {
		out[i] = toAPICreditLog(v)
	}

	return out
}
