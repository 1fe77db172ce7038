// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"math"
	"sort"
)

// rateEpsilon absorbs vendors that send 2.1 as 0.021000000000000001.
const rateEpsilon = 1e-9

// ReconcileTaxRate reduces per-category rates to one serie rate.
//
// No rates gives nil. Rates that all agree give that rate. Rates that
// disagree give nil and divergent=true: the caller surfaces it as a
// data-quality warning and the per-category rates stay on the categories.
func ReconcileTaxRate(rates []float64) (rate *float64, divergent bool) {
	if len(rates) == 0 {
		return nil, false
	}
	first := rates[0]
	for _, r := range rates[1:] {
		if !ratesEqual(first, r) {
			return nil, true
		}
	}
	return Float64(first), false
}

// NormalizeRate converts a percentage (20, 5.5, 2.1) to a fraction. Only
// values above 1 are percentages: 1 itself is read as the fraction 1, since
// no French VAT rate is 1%.
func NormalizeRate(r float64) float64 {
	if r > 1 {
		return r / 100
	}
	return r
}

func ratesEqual(a, b float64) bool {
	return math.Abs(a-b) < rateEpsilon
}

func distinctRates(rates []float64) []float64 {
	out := make([]float64, 0, len(rates))
	for _, r := range rates {
		dup := false
		for _, o := range out {
			if ratesEqual(o, r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	sort.Float64s(out)
	return out
}
