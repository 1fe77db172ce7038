// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package taxes converts between tax-inclusive and tax-exclusive amounts.
//
// Rates are fractions (0.2 for 20%). The conversion functions never round;
// rounding happens once, at the output boundary, through FormatAmount or
// SplitIncludingTaxes.
package taxes
