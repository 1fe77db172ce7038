// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package sibil

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/declaspectacle/internal/config"
	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/validation"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	// BaseURL is the production SIBIL API.
	BaseURL = "https://sibil.culture.gouv.fr"

	// SandboxBaseURL is the acceptance environment SIBIL opens to software vendors.
	SandboxBaseURL = "https://sibil-recette.culture.gouv.fr"

	name = "sibil"
)

// ErrMissingCredentials is returned by New when the username or password is empty.
var ErrMissingCredentials = errors.New("sibil: username and password are required")

// Config configures a Client.
type Config struct {
	Username string
	Password string
	Sandbox  bool

	// BaseURL overrides the production or sandbox host.
	BaseURL string

	HTTP vendorapi.Options
}

// Client is a SIBIL session. It is safe for concurrent use; all calls share
// one login.
type Client struct {
	api       *vendorapi.Client
	session   *vendorapi.Session
	requestID func() string
}

// New returns a logged-out client.
func New(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	base := cfg.BaseURL
	if base == "" {
		base = BaseURL
		if cfg.Sandbox {
			base = SandboxBaseURL
		}
	}

	opts := cfg.HTTP
	def := vendorapi.DefaultOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Retry == (vendorapi.RetryPolicy{}) {
		opts.Retry = def.Retry
	}

	c := &Client{
		api:       vendorapi.NewClient(name, base, opts),
		requestID: uuid.NewString,
	}
	c.session = vendorapi.NewSession(name, c.loginFunc(cfg.Username, cfg.Password), c.logout)
	return c, nil
}

// FromConfig builds a client from the sibil section of the configuration.
// Pacing and retries follow the ticketing section.
func FromConfig(sc config.SibilConfig, tc config.TicketingConfig) (*Client, error) {
	return New(Config{
		Username: sc.Username,
		Password: sc.ResolvedPassword(),
		Sandbox:  sc.Sandbox,
		BaseURL:  sc.BaseURL,
		HTTP: vendorapi.Options{
			Timeout:           sc.Timeout,
			RequestsPerSecond: tc.RequestsPerSecond,
			Burst:             tc.Burst,
			UserAgent:         tc.UserAgent,
			Retry: vendorapi.RetryPolicy{
				MaxRetries:        tc.Retry.MaxRetries,
				BaseDelay:         tc.Retry.BaseDelay,
				MaxDelay:          tc.Retry.MaxDelay,
				RespectRetryAfter: tc.Retry.RespectRetryAfter,
			},
		},
	})
}

// Login opens a session, replacing any current one.
func (c *Client) Login(ctx context.Context) error {
	return c.session.Login(ctx)
}

// Logout closes the session. The client is logged out afterwards even when
// SIBIL could not be reached.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// State reports the session state.
func (c *Client) State() vendorapi.AuthState {
	return c.session.State()
}

func (c *Client) loginFunc(username, password string) vendorapi.LoginFunc {
	return func(ctx context.Context) (vendorapi.Token, error) {
		var resp struct {
			Token     string `json:"token"`
			ExpiresIn int    `json:"expires_in"`
		}
		req := vendorapi.Request{
			Method: http.MethodPost,
			Path:   "/api/login",
			JSON:   map[string]string{"login": username, "password": password},
		}
		if _, err := c.api.DoJSON(ctx, req, &resp); err != nil {
			return vendorapi.Token{}, vendorapi.AuthenticationOnStatus(err, http.StatusBadRequest)
		}
		tok := vendorapi.Token{Value: resp.Token}
		if resp.ExpiresIn > 0 {
			tok.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		}
		return tok, nil
	}
}

func (c *Client) logout(ctx context.Context, tok vendorapi.Token) error {
	req := vendorapi.Request{Method: http.MethodPost, Path: "/api/logout", Header: http.Header{}}
	vendorapi.BearerAuth(&req, tok.Value)
	_, err := c.api.Do(ctx, req)
	return err
}

// Declare submits decl. It fails with an AuthenticationError when no session
// is open, a DeclarationRejectedError when the declaration is invalid or SIBIL
// refuses it, and a ConnectivityError when SIBIL cannot be reached.
func (c *Client) Declare(ctx context.Context, decl models.SibilDeclaration) error {
	token, err := c.session.Current()
	if err != nil {
		metrics.RecordDeclaration("error")
		return err
	}

	if err := validation.ValidateStruct(&decl); err != nil {
		metrics.RecordDeclaration("rejected")
		return invalidDeclaration(err)
	}

	requestID := c.requestID()
	req := vendorapi.Request{
		Method: http.MethodPost,
		Path:   "/api/declarations",
		Header: http.Header{"X-Request-ID": {requestID}},
		JSON:   newPayload(&decl),
	}
	vendorapi.BearerAuth(&req, token)

	var receipt struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	_, err = c.api.DoJSON(ctx, req, &receipt)
	if err != nil {
		err = c.classify(err)
		result := "error"
		var rejected *connerr.DeclarationRejectedError
		if errors.As(err, &rejected) {
			result = "rejected"
		}
		metrics.RecordDeclaration(result)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("request_id", requestID).
			Str("show", decl.ShowName).
			Msg("SIBIL declaration failed")
		return err
	}

	metrics.RecordDeclaration("accepted")
	logging.Ctx(ctx).Info().
		Str("request_id", requestID).
		Str("declaration_id", receipt.ID).
		Str("status", receipt.Status).
		Str("show", decl.ShowName).
		Int("events", len(decl.Events)).
		Msg("SIBIL declaration accepted")
	return nil
}

// classify turns validation answers into DeclarationRejectedError and drops
// the session on 401.
func (c *Client) classify(err error) error {
	var authErr *connerr.AuthenticationError
	if errors.As(err, &authErr) && authErr.StatusCode == http.StatusUnauthorized {
		c.session.Invalidate()
		return err
	}

	var statusErr *connerr.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	if statusErr.StatusCode != http.StatusBadRequest && statusErr.StatusCode != http.StatusUnprocessableEntity {
		return err
	}

	rejected := &connerr.DeclarationRejectedError{StatusCode: statusErr.StatusCode}
	var body struct {
		Message string              `json:"message"`
		Errors  []connerr.Violation `json:"errors"`
	}
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil {
		rejected.Message = body.Message
		rejected.Violations = body.Errors
	} else {
		rejected.Message = statusErr.Body
	}
	return rejected
}

func invalidDeclaration(err error) error {
	rejected := &connerr.DeclarationRejectedError{Message: "invalid declaration"}
	var structErr *validation.StructValidationError
	if !errors.As(err, &structErr) {
		rejected.Message = err.Error()
		return rejected
	}
	for _, fe := range structErr.Errors() {
		rejected.Violations = append(rejected.Violations, connerr.Violation{
			Field:   fe.Namespace(),
			Message: fe.Error(),
		})
	}
	return rejected
}
