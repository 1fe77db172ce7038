// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"time"

	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

// Vendor is the configuration name of a ticketing system.
type Vendor string

const (
	Billetweb   Vendor = "billetweb"
	HelloAsso   Vendor = "helloasso"
	Mapado      Vendor = "mapado"
	Dice        Vendor = "dice"
	SoTicket    Vendor = "soticket"
	Supersoniks Vendor = "supersoniks"
	Weezevent   Vendor = "weezevent"
	Secutix     Vendor = "secutix"
	Yurplan     Vendor = "yurplan"
	Sirius      Vendor = "sirius"
)

func (v Vendor) String() string { return string(v) }

// Connector is implemented by every ticketing system.
type Connector interface {
	Vendor() Vendor

	// TestConnection checks the credentials with one cheap call.
	TestConnection(ctx context.Context) (bool, error)

	// GetEventsSeries returns the series with at least one event starting in
	// [from, to). A nil to means no upper bound.
	GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error)
}

// SessionConnector is implemented by vendors with an explicit login.
type SessionConnector interface {
	Connector
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	State() vendorapi.AuthState
}

// Credentials are the secrets of one connection. The meaning of each field
// depends on the vendor:
//
//	vendor                 AccessKey   SecretKey      AccountID
//	billetweb              user id     API key
//	helloasso              client id   client secret  organization slug
//	mapado, yurplan        client id   client secret
//	dice                   API token
//	soticket, supersoniks  username    password
//	weezevent              username    password       API key
//	secutix                username    password       institution (optional)
//	sirius                 key id      HMAC secret
type Credentials struct {
	AccessKey string
	SecretKey string
	AccountID string
	Sandbox   bool
}

// Options tune a connector.
type Options struct {
	// BaseURL replaces the vendor host (self-hosted instances, tests).
	BaseURL string

	// HTTP configures timeouts, pacing and 429 retries. Zero values take
	// vendorapi.DefaultOptions.
	HTTP vendorapi.Options
}

func (o Options) httpOptions() vendorapi.Options {
	h := o.HTTP
	def := vendorapi.DefaultOptions()
	if h.Timeout == 0 {
		h.Timeout = def.Timeout
	}
	if h.UserAgent == "" {
		h.UserAgent = def.UserAgent
	}
	if h.Retry == (vendorapi.RetryPolicy{}) {
		h.Retry = def.Retry
	}
	return h
}

func (o Options) baseURL(production, sandbox string, useSandbox bool) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	if useSandbox && sandbox != "" {
		return sandbox
	}
	return production
}
