// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package vendorapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/tomtom215/declaspectacle/internal/connerr"
)

// OAuth2Config describes a client-credentials grant.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	// Params are extra form values sent to the token endpoint.
	Params url.Values
}

// OAuth2Login returns a LoginFunc running the client-credentials grant
// through c's HTTP client. Credentials travel in the form body, which every
// supported OAuth2 vendor accepts.
func OAuth2Login(c *Client, cfg OAuth2Config) LoginFunc {
	conf := &clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       cfg.TokenURL,
		Scopes:         cfg.Scopes,
		EndpointParams: cfg.Params,
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	return func(ctx context.Context) (Token, error) {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient())
		tok, err := conf.Token(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Token{}, ctx.Err()
			}
			return Token{}, classifyOAuthError(err)
		}
		return Token{Value: tok.AccessToken, ExpiresAt: tok.Expiry}, nil
	}
}

func classifyOAuthError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return connerr.NewConnectivityError("token endpoint unreachable", err)
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	switch {
	case status == http.StatusTooManyRequests:
		return &connerr.RateLimitedError{Attempts: 1, Err: err}
	case status >= 500:
		return &connerr.ConnectivityError{StatusCode: status, Message: "token endpoint failure", Err: err}
	default:
		msg := re.ErrorCode
		if re.ErrorDescription != "" {
			msg += ": " + re.ErrorDescription
		}
		return &connerr.AuthenticationError{StatusCode: status, Message: msg, Err: err}
	}
}
