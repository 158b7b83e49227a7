// Copyright (c) 2021 IoTeX Foundation
// This is an alpha (internal) release and is not suitable for production. This source code is provided 'as is' and no
// warranties are given as to title or non-infringement, merchantability or fitness for purpose and, to the extent
// permitted by law, all liability for your use of the code is disclaimed. This source code is governed by Apache
// License 2.0 that can be found in the LICENSE file.

package unit

import "math/big"

const (
	// MilliCents is the smallest named unit
	MilliCents = 1_000_000_000
	// Cents is 1000 milli cents
	Cents = 1000 * MilliCents
	// Dollars is 100 cents
	Dollars = 100 * Cents
)

// ConvertDollarsToBalance converts whole dollars to the base unit
func ConvertDollarsToBalance(dollars int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(dollars), big.NewInt(Dollars))
}
