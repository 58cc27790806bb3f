package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/hermes/internal/entities"
	"github.com/Decentr-net/hermes/internal/service"
	"github.com/Decentr-net/hermes/internal/service/impl"
	"github.com/Decentr-net/hermes/internal/storage"
	"github.com/Decentr-net/hermes/internal/storage/postgres"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Dump               string `long:"dump" env:"DUMP" default:"seed.json" description:"path to seed dump"`
	Postgres           string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMigrations string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`
	BcryptCost         int    `long:"bcrypt.cost" env:"BCRYPT_COST" default:"10" description:"bcrypt cost of password hashing"`
	LogLevel           string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
}{}

type location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type dump struct {
	Users []struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"users"`
	Follows []struct {
		Follower string `json:"follower"`
		Followee string `json:"followee"`
	} `json:"follows"`
	CreditLogs []struct {
		Username string   `json:"username"`
		Amount   float64  `json:"amount"`
		Type     string   `json:"type"`
		Start    location `json:"start"`
		End      location `json:"end"`
	} `json:"credit_logs"`
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "seed"
	parser.LongDescription = "Users, follows and credit logs importer"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	logrus.Info("seed started")

	b, err := ioutil.ReadFile(opts.Dump)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read dump")
	}

	var d dump

	if err := json.Unmarshal(b, &d); err != nil {
		logrus.WithError(err).Fatal("failed to unmarshal dump")
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug(spew.Sdump(d))
	}

	s := postgres.New(mustGetDB())

	if err := s.InTx(context.Background(), func(s storage.Storage) error {
		return seed(context.Background(), s, impl.New(s, opts.BcryptCost), &d)
	}); err != nil {
		logrus.WithError(err).Fatal("failed to seed")
	}

	logrus.Info("done")
}

func seed(ctx context.Context, s storage.Storage, srv service.Service, d *dump) error {
	ids := make(map[string]int64, len(d.Users))
	userID := func(username string) (int64, error) {
		if id, ok := ids[username]; ok {
			return id, nil
		}

		u, err := s.GetUserByUsername(ctx, username)
		if err != nil {
			return 0, fmt.Errorf("failed to get user %s: %w", username, err)
		}
		ids[username] = u.ID

		return u.ID, nil
	}

	logrus.Info("import users")
	for i, v := range d.Users {
		u, err := srv.SignUp(ctx, v.Username, v.Password)
		switch {
		case err == nil:
			ids[u.Username] = u.ID
		case errors.Is(err, service.ErrAlreadyExists):
			logrus.WithField("username", v.Username).Warn("user already exists, skip")
		default:
			return fmt.Errorf("failed to put user into db: %w", err)
		}

		if i%20 == 0 {
			logrus.Infof("%d of %d users imported", i+1, len(d.Users))
		}
	}

	logrus.Info("import follows")
	for i, v := range d.Follows {
		follower, err := userID(v.Follower)
		if err != nil {
			return err
		}

		if err := srv.Follow(ctx, follower, v.Followee); err != nil {
			return fmt.Errorf("failed to put follow into db: %w", err)
		}

		if i%20 == 0 {
			logrus.Infof("%d of %d follows imported", i+1, len(d.Follows))
		}
	}

	logrus.Info("import credit logs")
	for i, v := range d.CreditLogs {
		owner, err := userID(v.Username)
		if err != nil {
			return err
		}

		if _, err := srv.LogCredit(ctx, owner, service.NewCreditLog{
			Amount: v.Amount,
			Type:   v.Type,
			Start:  entities.Location(v.Start),
			End:    entities.Location(v.End),
		}); err != nil {
			return fmt.Errorf("failed to put credit log into db: %w", err)
		}

		if i%20 == 0 {
			logrus.Infof("%d of %d credit logs imported", i+1, len(d.CreditLogs))
		}
	}

	return nil
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}
