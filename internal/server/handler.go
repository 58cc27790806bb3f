package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"

	"github.com/Decentr-net/hermes/internal/api"
	"github.com/Decentr-net/hermes/internal/entities"
	mm "github.com/Decentr-net/hermes/internal/middleware"
	"github.com/Decentr-net/hermes/internal/service"
)

var errInvalidRequest = errors.New("invalid request")

func (s server) signUp(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /signup Auth SignUp
	//
	// Creates user and starts session.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/Credentials"
	// responses:
	//   '201':
	//     description: user created
	//     schema:
	//       "$ref": "#/definitions/SessionResponse"
	//   '400':
	//     description: bad request or username is taken
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req Credentials
	if err := s.decode(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyExists) || errors.Is(err, service.ErrPasswordTooLong) {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.WriteInternalErrorf(r.Context(), w, "failed to sign up: %s", err.Error())
		return
	}

	s.startSession(w, r, u, http.StatusCreated)
}

func (s server) signIn(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /signin Auth SignIn
	//
	// Checks credentials and starts session.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/Credentials"
	// responses:
	//   '200':
	//     description: signed in
	//     schema:
	//       "$ref": "#/definitions/SessionResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '403':
	//     description: bad credentials
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req Credentials
	if err := s.decode(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.s.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			api.WriteError(w, http.StatusForbidden, err.Error())
			return
		}
		api.WriteInternalErrorf(r.Context(), w, "failed to sign in: %s", err.Error())
		return
	}

	s.startSession(w, r, u, http.StatusOK)
}

func (s server) signOut(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /signout Auth SignOut
	//
	// Drops current session.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: signed out
	//     schema:
	//       "$ref": "#/definitions/Empty"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	if token := mm.GetToken(r); token != "" {
		if err := s.sessions.Delete(r.Context(), token); err != nil {
			api.WriteInternalErrorf(r.Context(), w, "failed to delete session: %s", err.Error())
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mm.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	api.WriteOK(w, http.StatusOK, Empty{})
}

func (s server) getFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /feed Feed GetFeed
	//
	// Returns latest credit logs of current user and users followed by him.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: credit logs sorted by creation time, newest first
	//     schema:
	//       type: array
	//       items:
	//         "$ref": "#/definitions/CreditLog"
	//   '401':
	//     description: not authenticated
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: user not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	id, _ := mm.GetUserID(r.Context())

	logs, err := s.s.PersonalFeed(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, fmt.Errorf("failed to get feed: %w", err))
		return
	}

	api.WriteOK(w, http.StatusOK, toAPICreditLogs(logs))
}

func (s server) getGlobalFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /global_feed Feed GetGlobalFeed
	//
	// Returns latest credit logs of all users.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: credit logs sorted by creation time, newest first
	//     schema:
	//       type: array
	//       items:
	//         "$ref": "#/definitions/CreditLog"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	logs, err := s.s.GlobalFeed(r.Context())
	if err != nil {
		api.WriteInternalErrorf(r.Context(), w, "failed to get global feed: %s", err.Error())
		return
	}

	api.WriteOK(w, http.StatusOK, toAPICreditLogs(logs))
}

func (s server) follow(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /follow/{username} Follow Follow
	//
	// Follows user. Following already followed user is not an error.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: username
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: followed
	//     schema:
	//       "$ref": "#/definitions/Empty"
	//   '400':
	//     description: self-follow
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '401':
	//     description: not authenticated
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: target user not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	id, _ := mm.GetUserID(r.Context())

	if err := s.s.Follow(r.Context(), id, chi.URLParam(r, "username")); err != nil {
		s.writeServiceError(w, r, fmt.Errorf("failed to follow: %w", err))
		return
	}

	api.WriteOK(w, http.StatusOK, Empty{})
}

func (s server) unfollow(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /unfollow/{username} Follow Unfollow
	//
	// Unfollows user. Unfollowing not followed user is not an error.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: username
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: unfollowed
	//     schema:
	//       "$ref": "#/definitions/Empty"
	//   '401':
	//     description: not authenticated
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	id, _ := mm.GetUserID(r.Context())

	if err := s.s.Unfollow(r.Context(), id, chi.URLParam(r, "username")); err != nil {
		api.WriteInternalErrorf(r.Context(), w, "failed to unfollow: %s", err.Error())
		return
	}

	api.WriteOK(w, http.StatusOK, Empty{})
}

func (s server) listCredits(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /credit/list Credit ListCredits
	//
	// Returns all credit logs of current user.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: credit logs sorted by creation time, newest first
	//     schema:
	//       type: array
	//       items:
	//         "$ref": "#/definitions/CreditLog"
	//   '401':
	//     description: not authenticated
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: user not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	id, _ := mm.GetUserID(r.Context())

	logs, err := s.s.ListCredits(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, fmt.Errorf("failed to list credit logs: %w", err))
		return
	}

	api.WriteOK(w, http.StatusOK, toAPICreditLogs(logs))
}

func (s server) logCredit(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /credit/log Credit LogCredit
	//
	// Appends credit log of current user.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/LogCreditRequest"
	// responses:
	//   '201':
	//     description: created credit log
	//     schema:
	//       "$ref": "#/definitions/CreditLog"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '401':
	//     description: not authenticated
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: user not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req LogCreditRequest
	if err := s.decode(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, _ := mm.GetUserID(r.Context())

	l, err := s.s.LogCredit(r.Context(), id, service.NewCreditLog{
		Amount: *req.Amount,
		Type:   req.Type,
		Start: entities.Location{
			Lat:     *req.StartLat,
			Lng:     *req.StartLng,
			Address: req.StartAddr,
		},
		End: entities.Location{
			Lat:     *req.EndLat,
			Lng:     *req.EndLng,
			Address: req.EndAddr,
		},
	})
	if err != nil {
		s.writeServiceError(w, r, fmt.Errorf("failed to log credit: %w", err))
		return
	}

	api.WriteOK(w, http.StatusCreated, toAPICreditLog(l))
}

func (s server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		api.GetLogger(r.Context()).WithError(err).Error("health check failed")
		api.WriteError(w, http.StatusServiceUnavailable, "storage is unavailable")
		return
	}

	api.WriteOK(w, http.StatusOK, Health{Status: "ok"})
}

func (s server) startSession(w http.ResponseWriter, r *http.Request, u *entities.User, status int) {
	token, err := s.sessions.Create(r.Context(), u.ID)
	if err != nil {
		api.WriteInternalErrorf(r.Context(), w, "failed to create session: %s", err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mm.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
	})

	api.WriteOK(w, status, SessionResponse{
		Authenticated: true,
		User: User{
			Username: u.Username,
		},
	})
}

// writeServiceError maps service errors to http statuses.
func (s server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSelfFollow):
		api.WriteError(w, http.StatusBadRequest, service.ErrSelfFollow.Error())
	case errors.Is(err, service.ErrUnknownTarget):
		api.WriteError(w, http.StatusNotFound, service.ErrUnknownTarget.Error())
	case errors.Is(err, service.ErrUnknownIdentity), errors.Is(err, service.ErrUnknownOwner):
		api.WriteError(w, http.StatusNotFound, service.ErrUnknownIdentity.Error())
	default:
		api.WriteInternalErrorf(r.Context(), w, "%s", err.Error())
	}
}

// decode reads json body into v and validates it.
func (s server) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", errInvalidRequest)
	}

	if err := s.v.Struct(v); err != nil {
		var verr validator.ValidationErrors
		if !errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", errInvalidRequest, err.Error())
		}

		fields := make([]string, len(verr))
		for i, fe := range verr {
			fields[i] = fmt.Sprintf("%s is %s", fe.Field(), describeTag(fe.Tag()))
		}

		return fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(fields, ", "))
	}

	return nil
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "max", maxBytesTag:
		return "too long"
	default:
		return "invalid"
	}
}
