package rugcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"solana-token-detector/internal/domain"
	"solana-token-detector/internal/idhash"
	"solana-token-detector/internal/solana"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.rugcheck.xyz/v1"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client queries the RugCheck public API.
type Client struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a RugCheck API client. An empty baseURL selects the
// public endpoint.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assess fetches and normalizes the risk report summary for a mint.
// Malformed addresses fail with ErrRejected before any network call.
func (c *Client) Assess(ctx context.Context, mint string) (*domain.RiskReport, error) {
	if err := solana.ValidateAddress(mint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	body, err := c.get(ctx, c.baseURL+"/tokens/"+mint+"/report/summary")
	if err != nil {
		return nil, err
	}

	var raw summaryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode summary: %v", ErrUnavailable, err)
	}

	report := &domain.RiskReport{
		Mint:        mint,
		Creator:     raw.Creator,
		Fingerprint: idhash.ReportFingerprint(body),
	}
	if raw.ScoreNormalised != nil {
		report.Score = *raw.ScoreNormalised
	}
	if raw.TokenMeta != nil {
		report.TokenName = raw.TokenMeta.Name
		report.TokenSymbol = raw.TokenMeta.Symbol
	}
	report.Risks = normalizeRisks(raw.Risks)

	return report, nil
}

// NewTokens fetches the newly minted token listing.
func (c *Client) NewTokens(ctx context.Context) ([]NewToken, error) {
	body, err := c.get(ctx, c.baseURL+"/stats/new_tokens")
	if err != nil {
		return nil, err
	}

	var tokens []NewToken
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("%w: decode new tokens: %v", ErrUnavailable, err)
	}
	return tokens, nil
}

// normalizeRisks converts raw risk entries to domain factors. Entries with
// neither a name nor a description carry no information and are dropped.
func normalizeRisks(raw []riskResponse) []domain.RiskFactor {
	if len(raw) == 0 {
		return nil
	}

	risks := make([]domain.RiskFactor, 0, len(raw))
	for _, r := range raw {
		if r.Name == "" && r.Description == "" {
			continue
		}

		severity := domain.SeverityWarn
		if strings.EqualFold(r.Level, string(domain.SeverityDanger)) {
			severity = domain.SeverityDanger
		}

		desc := r.Name
		if r.Description != "" {
			if desc != "" {
				desc += ": " + r.Description
			} else {
				desc = r.Description
			}
		}

		risks = append(risks, domain.RiskFactor{
			Severity:    severity,
			Description: desc,
		})
	}
	if len(risks) == 0 {
		return nil
	}
	return risks
}

// get performs a GET with retries and exponential backoff. 4xx responses
// are terminal; everything else is retried until attempts run out.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error
	var timedOut bool

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, c.classify(ctx.Err(), timedOut)
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			timedOut = isTimeout(err)
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			timedOut = isTimeout(err)
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}
		timedOut = false

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		default:
			return body, nil
		}
	}

	return nil, c.classify(lastErr, timedOut)
}

// classify wraps an exhausted-retry error as ErrTimeout or ErrUnavailable.
func (c *Client) classify(err error, timedOut bool) error {
	if timedOut || isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
