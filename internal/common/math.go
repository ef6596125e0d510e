/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"github.com/shopspring/decimal"
)

// ============================================================================
// Parsing
// ============================================================================

// SafeDecimal parses a numeric string, returning zero for empty or
// malformed input. Quote and RFQ fields arrive as strings and a bad field
// must degrade to zero rather than fail the whole computation.
func SafeDecimal(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ============================================================================
// Fixed-Point Conversion
// ============================================================================

// ToWei scales a decimal value to the 18-decimal integer representation
// used by signed payloads. Digits beyond 18 decimal places are truncated.
func ToWei(value decimal.Decimal) string {
	return value.Shift(WeiDecimals).Truncate(0).String()
}

// FromWei converts an 18-decimal integer string back to a decimal value.
func FromWei(value string) decimal.Decimal {
	return SafeDecimal(value).Shift(-WeiDecimals)
}

// ============================================================================
// Sizing Math
// ============================================================================

// Notional computes quantity * price
func Notional(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price)
}

// StepFloor rounds value down to a whole number of steps. A zero step
// cannot be rounded against and yields zero.
func StepFloor(value, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return decimal.Zero
	}
	return value.Div(step).Floor().Mul(step)
}
