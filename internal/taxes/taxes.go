// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package taxes

import (
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimals kept when an amount leaves the
// system (declarations, CLI output).
const AmountPlaces = 2

// ExcludingTaxesFromIncludingTaxes returns including / (1 + rate).
// The result is not rounded. A zero rate returns including unchanged.
func ExcludingTaxesFromIncludingTaxes(including, rate float64) float64 {
	if rate == 0 {
		return including
	}
	return including / (1 + rate)
}

// TaxAmountFromIncludingTaxes returns the tax part of a tax-inclusive amount.
// The result is not rounded: 9.6 at 0.2 gives 1.5999999999999996.
func TaxAmountFromIncludingTaxes(including, rate float64) float64 {
	if rate == 0 {
		return 0
	}
	return including - ExcludingTaxesFromIncludingTaxes(including, rate)
}

// IncludingTaxesFromExcludingTaxes returns excluding * (1 + rate), unrounded.
// Used for vendors that only report amounts before tax.
func IncludingTaxesFromExcludingTaxes(excluding, rate float64) float64 {
	if rate == 0 {
		return excluding
	}
	return excluding * (1 + rate)
}

// RoundAmount rounds v to two decimals, half away from zero.
//
// decimal.NewFromFloat uses the shortest representation of the float, so
// 899.1185112634672 rounds to 899.12 and 18.881488736532796 to 18.88.
func RoundAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(AmountPlaces)
}

// FormatAmount renders v with exactly two decimals ("899.12", "0.00").
func FormatAmount(v float64) string {
	return RoundAmount(v).StringFixed(AmountPlaces)
}

// FormatRate renders a fractional rate as a percentage with two decimals:
// 0.021 becomes "2.10", 0.2 becomes "20.00".
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).Round(AmountPlaces).StringFixed(AmountPlaces)
}

// Breakdown is a tax-inclusive amount split into formatted parts.
type Breakdown struct {
	IncludingTaxes string `json:"including_taxes"`
	ExcludingTaxes string `json:"excluding_taxes"`
	TaxAmount      string `json:"tax_amount"`
	Rate           string `json:"rate"`
}

// SplitIncludingTaxes computes excluding and tax amounts from unrounded floats
// and rounds each figure once, when formatting.
func SplitIncludingTaxes(including, rate float64) Breakdown {
	return Breakdown{
		IncludingTaxes: FormatAmount(including),
		ExcludingTaxes: FormatAmount(ExcludingTaxesFromIncludingTaxes(including, rate)),
		TaxAmount:      FormatAmount(TaxAmountFromIncludingTaxes(including, rate)),
		Rate:           FormatRate(rate),
	}
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return total
}
