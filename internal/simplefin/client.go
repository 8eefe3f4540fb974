package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	apperrors "finance-sync/internal/errors"
	"finance-sync/internal/retry"
)

const (
	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 512
)

// Client fetches accounts and transactions from a SimpleFin bridge.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	retry      *retry.Policy
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p *retry.Policy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// NewClient creates a client for baseURL (the access URL without
// credentials, e.g. https://bridge.simplefin.org/simplefin).
func NewClient(baseURL, username, password string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retry:      retry.New(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError is a non-2xx response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError || se.status == http.StatusTooManyRequests
	}
	var de *decodeError
	return !errors.As(err, &de)
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Accounts fetches every account with its transactions inside window,
// including pending ones. Server errors and network failures are retried.
func (c *Client) Accounts(ctx context.Context, window Window) (*AccountSet, error) {
	c.logger.Info("Fetching SimpleFin accounts",
		"start_date", window.Start,
		"end_date", window.End)

	var set *AccountSet
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		set, err = c.fetchAccounts(ctx, window)
		return err
	}, retryable, func(err error, wait time.Duration) {
		c.logger.Warn("SimpleFin request failed, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		c.logger.Error("Failed to fetch SimpleFin accounts", "error", err)
		return nil, apperrors.Wrap(apperrors.UpstreamError, "failed to fetch accounts", err)
	}

	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFin reported an error", "message", msg)
	}

	transactions := 0
	for _, a := range set.Accounts {
		transactions += len(a.Transactions)
	}
	c.logger.Info("Fetched SimpleFin accounts",
		"account_count", len(set.Accounts),
		"transaction_count", transactions)
	return set, nil
}

func (c *Client) fetchAccounts(ctx context.Context, window Window) (*AccountSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/accounts", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build accounts request")
	}

	q := req.URL.Query()
	q.Set("start-date", strconv.FormatInt(window.Start.Unix(), 10))
	q.Set("end-date", strconv.FormatInt(window.End.Unix(), 10))
	q.Set("pending", "1")
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send accounts request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &statusError{status: resp.StatusCode, body: string(body)}
	}

	var set AccountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, &decodeError{err: errors.Wrap(err, "decode accounts response")}
	}
	return &set, nil
}
