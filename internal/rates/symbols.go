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

package rates

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ProxyTicker maps an upstream broker symbol to its proxy ticker
func (r *Resolver) ProxyTicker(sourceTicker string) (string, bool) {
	if err := r.ensureLoaded(); err != nil {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.assets {
		if a.SourceTicker == sourceTicker {
			return a.ProxyTicker, true
		}
	}
	return "", false
}

// PrefixedName resolves a bare symbol name to its prefixed form using the
// prefix table. Names absent from every prefix group come back unchanged.
func (r *Resolver) PrefixedName(name string) string {
	if err := r.ensureLoaded(); err != nil {
		return name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for prefix, names := range r.prefixes {
		if _, ok := names[name]; ok {
			return prefix + name
		}
	}
	return name
}

// SplitPair splits a "A/B" symbol pair into its two legs
func SplitPair(pair string) (string, string, error) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid symbol pair %q", pair)
	}
	return parts[0], parts[1], nil
}

// FormatSymbols resolves both legs of a pair to their prefixed tickers
func (r *Resolver) FormatSymbols(pair string) (string, string, error) {
	first, second, err := SplitPair(pair)
	if err != nil {
		return "", "", err
	}
	return r.PrefixedName(first), r.PrefixedName(second), nil
}

// FormatPair resolves both legs and encodes the joined pair as a bytes32
// hex string for use as the asset identity in signed payloads.
func (r *Resolver) FormatPair(pair string) (string, error) {
	first, second, err := r.FormatSymbols(pair)
	if err != nil {
		return "", err
	}
	return ToBytes32(first + "/" + second), nil
}

// ToBytes32 right-pads a string to 32 bytes and hex-encodes it. Longer
// strings are truncated to 32 bytes.
func ToBytes32(s string) string {
	var buf [32]byte
	copy(buf[:], s)
	return "0x" + hex.EncodeToString(buf[:])
}
