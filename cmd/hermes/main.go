package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Decentr-net/logrus/sentry"

	"github.com/Decentr-net/hermes/internal/memory"
	"github.com/Decentr-net/hermes/internal/server"
	"github.com/Decentr-net/hermes/internal/service/impl"
	"github.com/Decentr-net/hermes/internal/session"
	"github.com/Decentr-net/hermes/internal/storage"
	storagememory "github.com/Decentr-net/hermes/internal/storage/memory"
	"github.com/Decentr-net/hermes/internal/storage/postgres"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host           string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port           int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on for insecure connections, defaults to a random value"`
	RequestTimeout time.Duration `long:"http.request_timeout" env:"HTTP_REQUEST_TIMEOUT" default:"5s" description:"request processing timeout"`

	Storage string `long:"storage" env:"STORAGE" default:"postgres" description:"storage backend" choice:"postgres" choice:"memory"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`

	SessionTTL             time.Duration `long:"session.ttl" env:"SESSION_TTL" default:"168h" description:"session lifetime"`
	SessionCleanupInterval time.Duration `long:"session.cleanup_interval" env:"SESSION_CLEANUP_INTERVAL" default:"10m" description:"interval of expired sessions removal"`

	GlobalFeedCacheTTL time.Duration `long:"global_feed.cache_ttl" env:"GLOBAL_FEED_CACHE_TTL" default:"0s" description:"global feed cache ttl, 0 disables caching"`

	BcryptCost int `long:"bcrypt.cost" env:"BCRYPT_COST" default:"10" description:"bcrypt cost of password hashing"`

	LogLevel  string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	SentryDSN string `long:"sentry.dsn" env:"SENTRY_DSN" description:"sentry dsn"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Hermes"
	parser.LongDescription = "Hermes: credit logs and feeds"

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

	logrus.Info("service started")

	if opts.SentryDSN != "" {
		hook, err := sentry.NewHook(sentry.Options{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
			ServerName:       "hermes",
		}, logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel)

		if err != nil {
			logrus.WithError(err).Fatal("failed to init sentry")
		}

		logrus.AddHook(hook)
	} else {
		logrus.Info("empty sentry dsn")
		logrus.Warn("skip sentry initialization")
	}

	s := mustGetStorage()

	sessionsStorage := memory.NewStorage(opts.SessionCleanupInterval)
	defer sessionsStorage.Close()

	r := chi.NewMux()
	server.SetupRouter(
		impl.New(s, opts.BcryptCost),
		session.NewMemoryStore(sessionsStorage, opts.SessionTTL),
		s,
		r,
		server.Options{
			Timeout:            opts.RequestTimeout,
			GlobalFeedCacheTTL: opts.GlobalFeedCacheTTL,
		},
	)

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	gr, _ := errgroup.WithContext(context.Background())
	gr.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		s := <-sigs

		logrus.Infof("terminating by %s signal", s)

		ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("failed to gracefully shutdown server")
		}

		return errTerminated
	})

	logrus.WithField("addr", srv.Addr).Info("listening")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetStorage() storage.Storage {
	if opts.Storage == "memory" {
		logrus.Warn("using in-memory storage, data will be lost on restart")
		return storagememory.New()
	}

	return postgres.New(mustGetDB())
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

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

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
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
