// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx in tx")

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type pg struct {
	ext sqlx.ExtContext
}

type userDTO struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type creditLogDTO struct {
	ID        int64     `db:"id"`
	Owner     int64     `db:"owner"`
	Username  string    `db:"username"`
	Amount    float64   `db:"amount"`
	Type      string    `db:"type"`
	StartLat  float64   `db:"start_lat"`
	StartLng  float64   `db:"start_lng"`
	StartAddr string    `db:"start_addr"`
	EndLat    float64   `db:"end_lat"`
	EndLng    float64   `db:"end_lng"`
	EndAddr   string    `db:"end_addr"`
	CreatedAt time.Time `db:"created_at"`
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) Ping(ctx context.Context) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return nil
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	return nil
}

func (s pg) CreateUser(ctx context.Context, username string, passwordHash []byte) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			INSERT INTO "user"(username, password_hash) VALUES($1, $2)
			RETURNING id, username, password_hash, created_at
		`, username, passwordHash,
	); err != nil {
		if isPQError(err, uniqueViolation) {
			return nil, storage.ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM "user" WHERE id = $1`, id)
}

func (s pg) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM "user" WHERE username = $1`, username)
}

func (s pg) getUser(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) Follow(ctx context.Context, follower, followee int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`
			INSERT INTO follow(follower, followee) VALUES($1, $2) ON CONFLICT DO NOTHING
		`, follower, followee,
	); err != nil {
		if isPQError(err, foreignKeyViolation) {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) Unfollow(ctx context.Context, follower, followee int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`
			DELETE FROM follow WHERE follower=$1 AND followee=$2
		`, follower, followee,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) ListFollowees(ctx context.Context, follower int64) ([]int64, error) {
	out := []int64{}

	if err := sqlx.SelectContext(ctx, s.ext, &out,
		`SELECT followee FROM follow WHERE follower = $1 ORDER BY followee`, follower,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return out, nil
}

func (s pg) CreateCreditLog(ctx context.Context, p *storage.CreateCreditLogParams) (*entities.CreditLog, error) {
	l := creditLogDTO{
		Owner:     p.Owner,
		Amount:    p.Amount,
		Type:      p.Type,
		StartLat:  p.Start.Lat,
		StartLng:  p.Start.Lng,
		StartAddr: p.Start.Address,
		EndLat:    p.End.Lat,
		EndLng:    p.End.Lng,
		EndAddr:   p.End.Address,
		CreatedAt: p.CreatedAt.UTC(),
	}

	query, args, err := sqlx.Named(`
			WITH inserted AS (
				INSERT INTO credit_log(owner, amount, type, start_lat, start_lng, start_addr, end_lat, end_lng, end_addr, created_at)
				VALUES(:owner, :amount, :type, :start_lat, :start_lng, :start_addr, :end_lat, :end_lng, :end_addr, :created_at)
				RETURNING *
			)
			SELECT i.*, u.username FROM inserted i JOIN "user" u ON u.id = i.owner
		`, l,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind named query: %w", err)
	}

	if err := sqlx.GetContext(ctx, s.ext, &l, s.ext.Rebind(query), args...); err != nil {
		if isPQError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toCreditLog(&l), nil
}

func (s pg) ListCreditLogs(ctx context.Context, p *storage.ListCreditLogsParams) ([]*entities.CreditLog, error) {
	if p.Owners != nil && len(p.Owners) == 0 {
		return []*entities.CreditLog{}, nil
	}

	query := `
		SELECT c.id, c.owner, u.username, c.amount, c.type,
			c.start_lat, c.start_lng, c.start_addr, c.end_lat, c.end_lng, c.end_addr, c.created_at
		FROM credit_log c
		JOIN "user" u ON u.id = c.owner
	`
	var args []interface{}

	if p.Owners != nil {
		query += ` WHERE c.owner IN (?)`
		args = append(args, int64sUnique(p.Owners))
	}

	query += ` ORDER BY c.created_at DESC, c.id DESC`

	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to construct IN clause: %w", err)
	}

	var l []*creditLogDTO

	if err := sqlx.SelectContext(ctx, s.ext, &l, s.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.CreditLog, len(l))
	for i, v := range l {
		out[i] = toCreditLog(v)
	}

	return out, nil
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func toUser(u *userDTO) *entities.User {
	return &entities.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func toCreditLog(l *creditLogDTO) *entities.CreditLog {
	return &entities.CreditLog{
		ID:       l.ID,
		Owner:    l.Owner,
		Username: l.Username,
		Amount:   l.Amount,
		Type:     l.Type,
		Start: entities.Location{
			Lat:     l.StartLat,
			Lng:     l.StartLng,
			Address: l.StartAddr,
		},
		End: entities.Location{
			Lat:     l.EndLat,
			Lng:     l.EndLng,
			Address: l.EndAddr,
		},
		CreatedAt: l.CreatedAt,
	}
}

func int64sUnique(s []int64) []int64 {
	m := make(map[int64]struct{}, len(s))
	out := make([]int64, 0, len(s))

	for _, v := range s {
		if _, ok := m[v]; !ok {
			m[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}
