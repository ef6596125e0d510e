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

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/triparty-labs/perp-quoting-go/internal/prices"
	"github.com/triparty-labs/perp-quoting-go/internal/rfq"
	"github.com/triparty-labs/perp-quoting-go/internal/signing"
)

const defaultTimeout = 10 * time.Second

// Client is the REST client for the quoting backend. It satisfies both
// the RFQ sender and the signed payload submitter.
type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		baseUrl: baseUrl,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, token string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(msg))
	}
	return nil
}

// SendRfq publishes a request-for-quote
func (c *Client) SendRfq(ctx context.Context, req rfq.RfqRequest, token string) error {
	return c.post(ctx, "/api/v1/submit_rfq", req, token)
}

// SendSignedWrappedOpenQuote submits a signed open quote
func (c *Client) SendSignedWrappedOpenQuote(ctx context.Context, req *signing.SignedWrappedOpenQuoteRequest, token string) error {
	return c.post(ctx, "/api/v1/submit_signed_wrapped_open_quote", req, token)
}

// SendSignedCloseQuote submits a signed close quote
func (c *Client) SendSignedCloseQuote(ctx context.Context, req *signing.SignedCloseQuoteRequest, token string) error {
	return c.post(ctx, "/api/v1/submit_signed_close_quote", req, token)
}

// SendSignedCancelOpenQuote submits a signed open-quote cancel
func (c *Client) SendSignedCancelOpenQuote(ctx context.Context, req *signing.SignedCancelOpenQuoteRequest, token string) error {
	return c.post(ctx, "/api/v1/submit_signed_cancel_open_quote", req, token)
}

// SendSignedCancelCloseQuote submits a signed close-quote cancel
func (c *Client) SendSignedCancelCloseQuote(ctx context.Context, req *signing.SignedCancelCloseQuoteRequest, token string) error {
	return c.post(ctx, "/api/v1/submit_signed_cancel_close_quote", req, token)
}

// GetPrices fetches the current leg prices for the given tickers
func (c *Client) GetPrices(ctx context.Context, symbols []string, token string) (map[string]prices.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseUrl+"/api/v1/get_prices?ids="+url.QueryEscape(strings.Join(symbols, ",")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build prices request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prices returned %d", resp.StatusCode)
	}

	var points map[string]prices.PricePoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	return points, nil
}

// TokenSession holds the bearer token for the current backend session.
// It is safe for concurrent use; an empty token means logged out.
type TokenSession struct {
	mu    sync.RWMutex
	token string
}

func (s *TokenSession) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *TokenSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
