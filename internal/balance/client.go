// Package balance talks to the external authoritative balance service.
package balance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Account is the balance service view of a player
type Account struct {
	SpendableBalance int64 `json:"spendableBalance"`
	Level            int   `json:"level"`
}

// Mutation is the request body of add and subtract
type Mutation struct {
	Amount      int64  `json:"amount"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

type mutationResponse struct {
	NewBalance int64 `json:"newBalance"`
}

// Client calls the balance service on behalf of one bearer token.
// Every call is bounded by the client timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
}

// NewClient creates a client for baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		maxRetries: DefaultReadRetries,
	}
}

// Fetch returns the player's current spendable balance and level
func (c *Client) Fetch(ctx context.Context, token string) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, PathBalance, token, nil, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Add credits amount and returns the new balance
func (c *Client) Add(ctx context.Context, token string, m Mutation) (int64, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodPost, PathBalanceAdd, token, m, &resp); err != nil {
		return 0, err
	}
	return resp.NewBalance, nil
}

// Subtract debits amount and returns the new balance
func (c *Client) Subtract(ctx context.Context, token string, m Mutation) (int64, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodPost, PathBalanceSubtract, token, m, &resp); err != nil {
		return 0, err
	}
	return resp.NewBalance, nil
}

// do performs one call within the timeout. Reads are retried on transport
// errors and 5xx; mutations never are, since they are not idempotent.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody []byte
	if body != nil {
		var err error
		if reqBody, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	log := logger.FromContext(ctx)
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, lastErr)
			case <-time.After(delay):
			}
			log.Info("Retrying balance request", "attempt", attempt, "path", path, "delay", delay)
		}

		retry, err := c.attempt(ctx, method, path, token, reqBody, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
		log.Warn("Balance request failed", "error", err, "attempt", attempt, "path", path)
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path, token string, reqBody []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", domain.ErrBalanceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("%w: status %d", domain.ErrBalanceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("%w: status %d", domain.ErrBalanceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Default().Debug("Undecodable balance response", "path", path, "error", err)
		return false, fmt.Errorf("%w: decode response: %v", domain.ErrBalanceUnavailable, err)
	}
	return false, nil
}
