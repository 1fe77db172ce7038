// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"math"
	"testing"
	"time"
)

func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkFloatEqual(t *testing.T, fieldName string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

func checkFloatPtrNil(t *testing.T, fieldName string, ptr *float64) {
	t.Helper()
	if ptr != nil {
		t.Errorf("%s should be nil, got %v", fieldName, *ptr)
	}
}

func checkFloatPtrEqual(t *testing.T, fieldName string, ptr *float64, want float64) {
	t.Helper()
	if ptr == nil {
		t.Errorf("%s should not be nil, expected %v", fieldName, want)
		return
	}
	checkFloatEqual(t, fieldName, *ptr, want)
}

func date(day, hour int) time.Time {
	return time.Date(2024, time.November, day, hour, 0, 0, 0, time.UTC)
}
