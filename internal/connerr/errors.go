// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package connerr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a connector failure so callers can pick a retry policy.
type Kind string

const (
	KindAuthentication      Kind = "authentication"
	KindConnectivity        Kind = "connectivity"
	KindRateLimited         Kind = "rate_limited"
	KindVendorData          Kind = "vendor_data"
	KindDeclarationRejected Kind = "declaration_rejected"
	KindCanceled            Kind = "canceled"
	KindUnknown             Kind = "unknown"
)

// AuthenticationError is returned when credentials are missing, invalid or expired.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Err        error
}

// NewAuthenticationError creates an AuthenticationError with a message and optional cause.
func NewAuthenticationError(message string, cause error) *AuthenticationError {
	return &AuthenticationError{Message: message, Err: cause}
}

func (e *AuthenticationError) Error() string {
	return describe("authentication failed", e.Message, e.StatusCode, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ConnectivityError is returned when the vendor cannot be reached: DNS, TCP,
// TLS, timeouts, or a 5xx answer from the vendor.
type ConnectivityError struct {
	StatusCode int
	Message    string
	Err        error
}

// NewConnectivityError creates a ConnectivityError with a message and optional cause.
func NewConnectivityError(message string, cause error) *ConnectivityError {
	return &ConnectivityError{Message: message, Err: cause}
}

func (e *ConnectivityError) Error() string {
	return describe("vendor unreachable", e.Message, e.StatusCode, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RateLimitedError is returned when the vendor throttled the caller and the
// configured retry budget is exhausted. RetryAfter is zero when the vendor did
// not say how long to wait.
type RateLimitedError struct {
	RetryAfter time.Duration
	Attempts   int
	Err        error
}

func (e *RateLimitedError) Error() string {
	msg := fmt.Sprintf("rate limited after %d attempt(s)", e.Attempts)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// VendorDataError is returned when a vendor answer does not match the shape
// the connector expects. It usually means the vendor changed its API.
type VendorDataError struct {
	Message string
	Err     error
}

// NewVendorDataError creates a VendorDataError with a message and optional cause.
func NewVendorDataError(message string, cause error) *VendorDataError {
	return &VendorDataError{Message: message, Err: cause}
}

func (e *VendorDataError) Error() string {
	return describe("unexpected vendor data", e.Message, 0, e.Err)
}

func (e *VendorDataError) Unwrap() error { return e.Err }

// Violation is one field-level rejection reported by a declaration system.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DeclarationRejectedError is returned when a declaration system refused the
// payload after validating it.
type DeclarationRejectedError struct {
	StatusCode int
	Message    string
	Violations []Violation
}

func (e *DeclarationRejectedError) Error() string {
	var b strings.Builder
	b.WriteString("declaration rejected")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	for i, v := range e.Violations {
		if i == 0 {
			b.WriteString(" [")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", v.Field, v.Message)
		if i == len(e.Violations)-1 {
			b.WriteString("]")
		}
	}
	return b.String()
}

// StatusError is an HTTP answer that none of the classified errors covers
// (400, 404, 409, ...). It ends up wrapped in a TicketingConnectorError.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// TicketingConnectorError is the envelope every connector returns. It carries
// the vendor name and the operation, and unwraps to the classified cause so
// errors.As works on the taxonomy above.
type TicketingConnectorError struct {
	Vendor string
	Op     string
	Err    error
}

func (e *TicketingConnectorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Vendor, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Vendor, e.Op, e.Err)
}

func (e *TicketingConnectorError) Unwrap() error { return e.Err }

// Kind returns the classification of the wrapped cause.
func (e *TicketingConnectorError) Kind() Kind { return KindOf(e.Err) }

// Wrap puts err in a TicketingConnectorError for vendor and op. Nil stays nil
// and an existing envelope is returned unchanged.
func Wrap(vendor, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *TicketingConnectorError
	if errors.As(err, &existing) {
		return err
	}
	return &TicketingConnectorError{Vendor: vendor, Op: op, Err: err}
}

// KindOf classifies any error returned by this module.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var (
		authErr     *AuthenticationError
		connErr     *ConnectivityError
		rateErr     *RateLimitedError
		dataErr     *VendorDataError
		rejectedErr *DeclarationRejectedError
	)
	switch {
	case errors.As(err, &rateErr):
		return KindRateLimited
	case errors.As(err, &authErr):
		return KindAuthentication
	case errors.As(err, &rejectedErr):
		return KindDeclarationRejected
	case errors.As(err, &dataErr):
		return KindVendorData
	case errors.As(err, &connErr):
		return KindConnectivity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// VendorOf returns the vendor name carried by err, or "" when err is not a
// TicketingConnectorError.
func VendorOf(err error) string {
	var tce *TicketingConnectorError
	if errors.As(err, &tce) {
		return tce.Vendor
	}
	return ""
}

// IsRetryable reports whether retrying the whole call later may succeed.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConnectivity, KindRateLimited:
		return true
	default:
		return false
	}
}

// NeedsReauthentication reports whether the user must fix the connection's
// credentials before any retry can succeed.
func NeedsReauthentication(err error) bool {
	return KindOf(err) == KindAuthentication
}

// RetryAfter returns the delay a RateLimitedError asks for, or fallback when
// err is not rate limited or the vendor gave no hint.
func RetryAfter(err error, fallback time.Duration) time.Duration {
	var rateErr *RateLimitedError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
		return rateErr.RetryAfter
	}
	return fallback
}

func describe(prefix, message string, status int, cause error) string {
	var b strings.Builder
	b.WriteString(prefix)
	if status != 0 {
		fmt.Fprintf(&b, " (status %d)", status)
	}
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}
