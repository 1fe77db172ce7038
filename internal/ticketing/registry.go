// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/declaspectacle/internal/config"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

var (
	// ErrUnknownVendor is returned for a vendor name with no connector.
	ErrUnknownVendor = errors.New("unknown ticketing vendor")

	// ErrMissingCredentials is returned when a required credential is empty.
	ErrMissingCredentials = errors.New("missing credentials")
)

// Constructor builds a connector from credentials.
type Constructor func(creds Credentials, opts Options) (Connector, error)

var registry = map[Vendor]Constructor{
	Billetweb:   newBilletweb,
	HelloAsso:   newHelloAsso,
	Mapado:      newMapado,
	Dice:        newDice,
	SoTicket:    newSoTicketBrand(SoTicket),
	Supersoniks: newSoTicketBrand(Supersoniks),
	Weezevent:   newWeezevent,
	Secutix:     newSecutix,
	Yurplan:     newYurplan,
	Sirius:      newSirius,
}

// New builds the connector for vendor.
func New(vendor Vendor, creds Credentials, opts Options) (Connector, error) {
	ctor, ok := registry[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}
	return ctor(creds, opts)
}

// Vendors lists supported vendor names in alphabetical order.
func Vendors() []Vendor {
	out := make([]Vendor, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseVendor resolves a configuration name, ignoring case.
func ParseVendor(name string) (Vendor, error) {
	v := Vendor(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := registry[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, name)
	}
	return v, nil
}

// FromConfig builds the connector of a configured connection, wrapped in a
// circuit breaker when enabled.
func FromConfig(conn config.ConnectionConfig, tc config.TicketingConfig) (Connector, error) {
	vendor, err := ParseVendor(conn.Vendor)
	if err != nil {
		return nil, err
	}

	creds := Credentials{
		AccessKey: conn.ResolvedAccessKey(),
		SecretKey: conn.ResolvedSecretKey(),
		AccountID: conn.AccountID,
		Sandbox:   conn.Sandbox,
	}
	opts := Options{
		BaseURL: conn.BaseURL,
		HTTP: vendorapi.Options{
			Timeout:           tc.Timeout,
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
	}

	c, err := New(vendor, creds, opts)
	if err != nil {
		return nil, fmt.Errorf("connection %q: %w", conn.Name, err)
	}
	if tc.CircuitBreaker.Enabled {
		c = WithCircuitBreaker(c, conn.Name, BreakerSettings{
			MaxRequests:  tc.CircuitBreaker.MaxRequests,
			Interval:     tc.CircuitBreaker.Interval,
			Timeout:      tc.CircuitBreaker.Timeout,
			MinRequests:  tc.CircuitBreaker.MinRequests,
			FailureRatio: tc.CircuitBreaker.FailureRatio,
		})
	}
	return c, nil
}

func requireCredentials(vendor Vendor, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s needs %s", ErrMissingCredentials, vendor, strings.Join(missing, ", "))
}
