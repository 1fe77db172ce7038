// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package vendorapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
)

// AuthState is the authentication state of a Session.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticating
	StateAuthenticated
	StateLoggingOut
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateLoggingOut:
		return "LOGGING_OUT"
	default:
		return "UNKNOWN"
	}
}

// DefaultExpirySkew renews tokens slightly before the vendor expires them.
const DefaultExpirySkew = 30 * time.Second

// Token is a credential issued by a vendor. A zero ExpiresAt never expires.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// LoginFunc obtains a fresh token.
type LoginFunc func(ctx context.Context) (Token, error)

// LogoutFunc releases a token on the vendor side.
type LogoutFunc func(ctx context.Context, token Token) error

// Session holds the token of one connector instance. Callers own it for the
// lifetime of one call chain.
type Session struct {
	vendor string
	login  LoginFunc
	logout LogoutFunc
	skew   time.Duration
	now    func() time.Time

	mu    sync.Mutex
	state AuthState
	token Token
}

// NewSession creates an unauthenticated session. logout may be nil when the
// vendor has no logout endpoint.
func NewSession(vendor string, login LoginFunc, logout LogoutFunc) *Session {
	return &Session{
		vendor: vendor,
		login:  login,
		logout: logout,
		skew:   DefaultExpirySkew,
		now:    time.Now,
		state:  StateUnauthenticated,
	}
}

// State returns the current state.
func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns a valid token, logging in first when the session is not
// authenticated or the token is about to expire.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAuthenticated && !s.expiredLocked() {
		return s.token.Value, nil
	}
	if s.state == StateAuthenticated {
		logging.Ctx(ctx).Debug().Str("vendor", s.vendor).Msg("Session token expired, renewing")
	}
	if err := s.loginLocked(ctx); err != nil {
		return "", err
	}
	return s.token.Value, nil
}

// Current returns the token of an open session without logging in. A
// missing or expired session is an AuthenticationError.
func (s *Session) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		return "", connerr.NewAuthenticationError("not logged in", nil)
	}
	if s.expiredLocked() {
		return "", connerr.NewAuthenticationError("session expired", nil)
	}
	return s.token.Value, nil
}

// Login forces a new login, replacing any current token.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginLocked(ctx)
}

// Logout releases the token. It always ends UNAUTHENTICATED; the vendor error,
// if any, is returned for information only.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		s.resetLocked()
		return nil
	}

	s.state = StateLoggingOut
	token := s.token
	s.resetLocked()

	if s.logout == nil {
		return nil
	}
	if err := s.logout(ctx, token); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("vendor", s.vendor).Msg("Logout failed, session dropped locally")
		return err
	}
	return nil
}

// Invalidate drops the token without contacting the vendor, typically after
// the vendor answered 401 to a data call.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) loginLocked(ctx context.Context) error {
	s.state = StateAuthenticating
	token, err := s.login(ctx)
	metrics.RecordTokenRefresh(s.vendor, err)
	if err != nil {
		s.resetLocked()
		return err
	}
	if token.Value == "" {
		s.resetLocked()
		return connerr.NewVendorDataError("login answer carries no token", nil)
	}
	s.token = token
	s.state = StateAuthenticated
	logging.Ctx(ctx).Debug().
		Str("vendor", s.vendor).
		Str("token", logging.SanitizeToken(token.Value)).
		Time("expires_at", token.ExpiresAt).
		Msg("Vendor session opened")
	return nil
}

func (s *Session) expiredLocked() bool {
	if s.token.ExpiresAt.IsZero() {
		return false
	}
	return !s.now().Add(s.skew).Before(s.token.ExpiresAt)
}

func (s *Session) resetLocked() {
	s.state = StateUnauthenticated
	s.token = Token{}
}

// DoWithSession runs req with the session token applied by apply and decodes
// the answer into out. A 401 invalidates the session and the request is sent
// once more with a fresh token.
func (c *Client) DoWithSession(ctx context.Context, s *Session, req Request, apply func(*Request, string), out interface{}) (*Response, error) {
	for attempt := 0; ; attempt++ {
		token, err := s.Token(ctx)
		if err != nil {
			return nil, err
		}

		authed := req
		authed.Header = req.Header.Clone()
		if authed.Header == nil {
			authed.Header = http.Header{}
		}
		authed.Query = cloneValues(req.Query)
		apply(&authed, token)

		resp, err := c.DoJSON(ctx, authed, out)
		var authErr *connerr.AuthenticationError
		if attempt == 0 && errors.As(err, &authErr) && authErr.StatusCode == http.StatusUnauthorized {
			logging.Ctx(ctx).Debug().Str("vendor", c.vendor).Msg("Token rejected, logging in again")
			s.Invalidate()
			continue
		}
		return resp, err
	}
}

// BearerAuth sets an Authorization: Bearer header.
func BearerAuth(req *Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
