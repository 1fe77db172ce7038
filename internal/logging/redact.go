// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package logging

import (
	"net/url"
	"strings"
)

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername masks a username, keeping first 2 characters.
// Example: "billetterie@theatre.fr" -> "bi***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// sensitiveParams are query parameters that carry credentials for at least
// one vendor (Billetweb key pair, Sirius signature, Weezevent api_key).
var sensitiveParams = map[string]bool{
	"key":           true,
	"user":          true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"token":         true,
	"signature":     true,
	"password":      true,
	"client_secret": true,
}

// SanitizeURL masks credential-bearing query parameters so request URLs can
// be logged.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return truncateString(raw, 120)
	}
	q := u.Query()
	changed := false
	for k, vs := range q {
		if !sensitiveParams[strings.ToLower(k)] {
			continue
		}
		for i := range vs {
			vs[i] = SanitizeToken(vs[i])
		}
		changed = true
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	u.User = nil
	return u.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
