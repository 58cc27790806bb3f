// Package server Hermes
//
// The Hermes is a service which tracks users' credit logs and builds feeds from logs of followed users.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/hermes/internal/api"
	mm "github.com/Decentr-net/hermes/internal/middleware"
	"github.com/Decentr-net/hermes/internal/service"
	"github.com/Decentr-net/hermes/internal/session"
)

//go:generate swagger generate spec -t swagger -m -c . -o ../../static/swagger.json

// Pinger checks availability of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options ...
type Options struct {
	// Timeout limits request handling duration.
	Timeout time.Duration
	// GlobalFeedCacheTTL enables global feed caching when positive.
	GlobalFeedCacheTTL time.Duration
}

// maxBytesTag limits string length in bytes, while max counts runes.
const maxBytesTag = "maxbytes"

type server struct {
	s        service.Service
	sessions session.Store
	pinger   Pinger
	v        *validator.Validate
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s service.Service, sessions session.Store, p Pinger, r chi.Router, opts Options) {
	r.Use(
		middleware.RequestID,
		api.LoggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
		middleware.Timeout(opts.Timeout),
		api.BodyLimiterMiddleware(maxBodySize),
		mm.Authenticate(sessions),
	)

	srv := newServer(s, sessions, p)

	r.Get("/health", srv.health)

	r.Post("/signup", srv.signUp)
	r.Post("/signin", srv.signIn)
	r.Post("/signout", srv.signOut)
	r.Get("/global_feed", mm.Cached(opts.GlobalFeedCacheTTL, srv.getGlobalFeed))

	r.Group(func(r chi.Router) {
		r.Use(mm.RequireAuth)

		r.Get("/feed", srv.getFeed)
		r.Get("/follow/{username}", srv.follow)
		r.Get("/unfollow/{username}", srv.unfollow)
		r.Get("/credit/list", srv.listCredits)
		r.Post("/credit/log", srv.logCredit)
	})
}

func newServer(s service.Service, sessions session.Store, p Pinger) server {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation(maxBytesTag, maxBytes); err != nil {
		logrus.WithError(err).Fatal("failed to register validation")
	}

	return server{
		s:        s,
		sessions: sessions,
		pinger:   p,
		v:        v,
	}
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= n
}
