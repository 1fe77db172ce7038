// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package testinfra

import (
	"os"
	"testing"
)

// ManualTestsEnv enables tests that hit live vendor systems.
const ManualTestsEnv = "TICKETING_MANUAL_TESTS"

// ManualEnabled reports whether live tests were requested.
func ManualEnabled() bool {
	return os.Getenv(ManualTestsEnv) == "1"
}

// RequireManual skips t unless TICKETING_MANUAL_TESTS=1.
func RequireManual(t testing.TB) {
	t.Helper()
	if !ManualEnabled() {
		t.Skipf("live vendor test: set %s=1 to run", ManualTestsEnv)
	}
}

// RequireEnv returns the value of name, skipping t when it is unset.
func RequireEnv(t testing.TB, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("live vendor test: %s not set", name)
	}
	return v
}
