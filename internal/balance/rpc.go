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

package balance

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// RpcSource reads the deposited balance with an eth_call against the
// core contract's getBalances(address) view.
type RpcSource struct {
	url      string
	contract string
	http     *http.Client
	selector string
}

func NewRpcSource(url, contract string) *RpcSource {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("getBalances(address)"))

	return &RpcSource{
		url:      url,
		contract: contract,
		http:     &http.Client{Timeout: 10 * time.Second},
		selector: hex.EncodeToString(h.Sum(nil)[:4]),
	}
}

type rpcRequest struct {
	JsonRpc string        `json:"jsonrpc"`
	Id      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DepositedBalance returns the balance scaled out of wei. An empty "0x"
// result reads as zero.
func (s *RpcSource) DepositedBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	data := "0x" + s.selector + pad32(address)

	payload, err := json.Marshal(rpcRequest{
		JsonRpc: "2.0",
		Id:      1,
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{"to": s.contract, "data": data},
			"latest",
		},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode eth_call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build eth_call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("eth_call failed: %w", err)
	}
	defer resp.Body.Close()

	var result rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode eth_call response: %w", err)
	}
	if result.Error != nil {
		return decimal.Zero, fmt.Errorf("eth_call error %d: %s", result.Error.Code, result.Error.Message)
	}

	trimmed := strings.TrimPrefix(result.Result, "0x")
	if trimmed == "" {
		return decimal.Zero, nil
	}

	value, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("malformed eth_call result %q", result.Result)
	}

	return decimal.NewFromBigInt(value, -18), nil
}

// pad32 left-pads an address to a 32 byte call argument. Input longer
// than 32 bytes is truncated to its low-order end.
func pad32(address string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(address, "0x"))
	if len(trimmed) >= 64 {
		return trimmed[len(trimmed)-64:]
	}
	return strings.Repeat("0", 64-len(trimmed)) + trimmed
}
