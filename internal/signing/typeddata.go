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

package signing

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Domain is the typed-data domain separator
type Domain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainId           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// Field is one declared member of a typed-data schema
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types declares the typed-data schemas by primary type name
type Types map[string][]Field

// Value holds the message fields as wire strings, keyed by field name
type Value map[string]string

// Signer produces a typed-data signature. Implementations may prompt a
// user and can reject or take unbounded time; callers pass a context.
type Signer interface {
	SignTypedData(ctx context.Context, domain Domain, primaryType string, types Types, value Value) (string, error)
}

// digest computes a canonical Keccak-256 digest over a typed-data
// message: domain fields first, then the declared fields in schema order.
func digest(domain Domain, primaryType string, types Types, value Value) []byte {
	h := sha3.NewLegacyKeccak256()

	fmt.Fprintf(h, "%s|%s|%d|%s|%s", domain.Name, domain.Version, domain.ChainId,
		strings.ToLower(domain.VerifyingContract), primaryType)

	for _, f := range types[primaryType] {
		fmt.Fprintf(h, "|%s:%s=%s", f.Name, f.Type, value[f.Name])
	}

	return h.Sum(nil)
}

// Keccak256Hex hashes raw bytes and returns the 0x-prefixed hex digest
func Keccak256Hex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// HexToBytes decodes a 0x-prefixed hex string; non-hex input falls back
// to its raw bytes.
func HexToBytes(s string) []byte {
	trimmed := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return []byte(s)
	}
	return b
}

// LocalSigner derives deterministic signatures from a private seed. It
// stands in for a wallet in dry runs and tests; the output is shaped like
// a 65-byte compact signature but carries no on-chain validity.
type LocalSigner struct {
	Seed []byte
}

// SignTypedData signs the canonical digest of the message
func (s *LocalSigner) SignTypedData(_ context.Context, domain Domain, primaryType string, types Types, value Value) (string, error) {
	d := digest(domain, primaryType, types, value)

	r := sha3.NewLegacyKeccak256()
	r.Write(s.Seed)
	r.Write(d)
	rPart := r.Sum(nil)

	v := sha3.NewLegacyKeccak256()
	v.Write(rPart)
	sPart := v.Sum(nil)

	return "0x" + hex.EncodeToString(rPart) + hex.EncodeToString(sPart) + "1b", nil
}
