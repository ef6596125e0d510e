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

// Method is the user-facing trade direction
type Method string

const (
	MethodBuy  Method = "Buy"
	MethodSell Method = "Sell"
)

// Rate table sides
const (
	SideLong  = "long"
	SideShort = "short"
)

// ============================================================================
// Wire Defaults
// ============================================================================

const (
	// WeiDecimals is the fixed-point scale used by every signed payload
	WeiDecimals = 18

	// ZeroAddress is used when no counterparty is known
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// ZeroHash is the fallback order hash for cancels with an empty target
	ZeroHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

	// DefaultCounterpartyAddress is quoted against until a live quote is selected
	DefaultCounterpartyAddress = "0xd0dDF915693f13Cf9B3b69dFF44eE77C901882f8"
)

// Oracle bounds attached to every wrapped open quote
const (
	DefaultMaxConfidence = "5"
	DefaultMaxDelay      = "600"
	DefaultPrecision     = 5
)

// CloseQuoteExpiry is the far-future expiry attached to close quotes (ms)
const CloseQuoteExpiry int64 = 315350000000

// MessageVersion is the typed-data schema version sent with every request
const MessageVersion = "1.0"
