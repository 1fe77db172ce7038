// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/declaspectacle/internal/config"
)

func TestVendors(t *testing.T) {
	got := Vendors()
	want := []string{"billetweb", "dice", "helloasso", "mapado", "secutix", "sirius", "soticket", "supersoniks", "weezevent", "yurplan"}
	names := make([]string, len(got))
	for i, v := range got {
		names[i] = string(v)
	}
	checkStrings(t, "Vendors()", names, want)
}

func TestParseVendor(t *testing.T) {
	v, err := ParseVendor("  HelloAsso ")
	if err != nil || v != HelloAsso {
		t.Errorf("ParseVendor() = %q, %v", v, err)
	}
	if _, err := ParseVendor("ticketmaster"); !errors.Is(err, ErrUnknownVendor) {
		t.Errorf("ParseVendor(unknown) error = %v, want ErrUnknownVendor", err)
	}
}

func TestNewMissingCredentials(t *testing.T) {
	tests := []struct {
		vendor  Vendor
		creds   Credentials
		missing string
	}{
		{Billetweb, Credentials{AccessKey: "u"}, "secret key"},
		{HelloAsso, Credentials{AccessKey: "id", SecretKey: "s"}, "organization slug"},
		{Dice, Credentials{}, "api token"},
		{Weezevent, Credentials{AccessKey: "u", SecretKey: "p"}, "api key"},
		{Sirius, Credentials{SecretKey: "s"}, "key id"},
	}
	for _, tt := range tests {
		t.Run(string(tt.vendor), func(t *testing.T) {
			_, err := New(tt.vendor, tt.creds, Options{})
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("New() error = %v, want ErrMissingCredentials", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q should name %q", err.Error(), tt.missing)
			}
		})
	}

	if _, err := New(Dice, Credentials{AccessKey: "token"}, Options{}); err != nil {
		t.Errorf("dice only needs an access key: %v", err)
	}
}

func TestSoTicketBrandsShareImplementation(t *testing.T) {
	creds := Credentials{AccessKey: "u", SecretKey: "p"}
	so, err := New(SoTicket, creds, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ss, err := New(Supersoniks, creds, Options{})
	if err != nil {
		t.Fatal(err)
	}

	soImpl, ok1 := so.(*soTicketConnector)
	ssImpl, ok2 := ss.(*soTicketConnector)
	if !ok1 || !ok2 {
		t.Fatalf("brands should share soTicketConnector, got %T and %T", so, ss)
	}
	if so.Vendor() != SoTicket || ss.Vendor() != Supersoniks {
		t.Errorf("vendors = %s, %s", so.Vendor(), ss.Vendor())
	}
	if soImpl.client.BaseURL() == ssImpl.client.BaseURL() {
		t.Errorf("brands should target different hosts, both use %s", soImpl.client.BaseURL())
	}
}

func TestSandboxHosts(t *testing.T) {
	creds := Credentials{AccessKey: "id", SecretKey: "s", AccountID: "org", Sandbox: true}
	c, err := New(HelloAsso, creds, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.(*helloAssoConnector).client.BaseURL(); got != helloAssoSandboxBaseURL {
		t.Errorf("sandbox base URL = %s", got)
	}

	c, err = New(HelloAsso, creds, Options{BaseURL: "http://127.0.0.1:9999/"})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.(*helloAssoConnector).client.BaseURL(); got != "http://127.0.0.1:9999" {
		t.Errorf("overridden base URL = %s", got)
	}
}

func TestFromConfig(t *testing.T) {
	tc := config.TicketingConfig{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 2,
		Burst:             1,
		UserAgent:         "test/1.0",
		Retry:             config.RetryConfig{MaxRetries: 1, BaseDelay: time.Second, MaxDelay: time.Second},
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 5, FailureRatio: 0.5,
		},
	}
	conn := config.ConnectionConfig{Name: "theatre", Vendor: "soticket", AccessKey: "u", SecretKey: "p"}

	c, err := FromConfig(conn, tc)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if c.Vendor() != SoTicket {
		t.Errorf("Vendor() = %s", c.Vendor())
	}
	if _, ok := c.(SessionConnector); !ok {
		t.Errorf("breaker should keep the session methods of %T", c)
	}
	if _, ok := c.(interface{ Unwrap() Connector }); !ok {
		t.Errorf("expected a circuit breaker wrapper, got %T", c)
	}

	tc.CircuitBreaker.Enabled = false
	c, err = FromConfig(conn, tc)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*soTicketConnector); !ok {
		t.Errorf("without breaker expected *soTicketConnector, got %T", c)
	}

	conn.SecretKey = ""
	if _, err := FromConfig(conn, tc); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("FromConfig() error = %v, want ErrMissingCredentials", err)
	}
}
