package shortlink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"vidgate/internal/core/ports"
	"vidgate/pkg/circuitbreaker"
	"vidgate/pkg/logger"
)

// fallbackCounter is the slice of the metrics collector the client needs.
type fallbackCounter interface {
	IncShortlinkFallback()
}

// Client talks to an InShortURL-style shortening API:
// GET <base>?api=<token>&url=<long>&alias=<alias> returning
// {"status":"success","shortenedUrl":"..."}. Provider failures are never
// surfaced to the caller of TokenLink; the direct deep link is returned
// instead. There is deliberately no retry, and a circuit breaker skips
// the provider entirely while it keeps failing.
type Client struct {
	apiURL      string
	apiToken    string
	botUsername string
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	logger      *logger.ContextLogger
	metrics     fallbackCounter
	now         func() time.Time
}

func NewClient(apiURL, apiToken, botUsername string, timeout time.Duration, log *logger.ContextLogger, metrics fallbackCounter) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.WithFields(
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		).Info("short-link provider circuit state changed")
	})
	return &Client{
		apiURL:      apiURL,
		apiToken:    apiToken,
		botUsername: botUsername,
		httpClient:  &http.Client{Timeout: timeout},
		breaker:     breaker,
		logger:      log,
		metrics:     metrics,
		now:         time.Now,
	}
}

var _ ports.LinkProvider = (*Client)(nil)

type shortenResponse struct {
	Status       string `json:"status"`
	ShortenedURL string `json:"shortenedUrl"`
	Message      string `json:"message"`
}

// Shorten calls the provider once and returns the shortened URL. While the
// circuit is open the provider is not contacted at all.
func (c *Client) Shorten(ctx context.Context, longURL, alias string) (string, error) {
	var short string
	err := c.breaker.Execute(func() error {
		var callErr error
		short, callErr = c.callProvider(ctx, longURL, alias)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return short, nil
}

func (c *Client) callProvider(ctx context.Context, longURL, alias string) (string, error) {
	params := url.Values{}
	params.Set("api", c.apiToken)
	params.Set("url", longURL)
	if alias != "" {
		params.Set("alias", alias)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build shorten request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten request: status %d", resp.StatusCode)
	}

	var result shortenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode shorten response: %w", err)
	}
	if result.Status != "success" || result.ShortenedURL == "" {
		return "", fmt.Errorf("shorten rejected: %s", result.Message)
	}
	return result.ShortenedURL, nil
}

// TokenLink builds the ad-gated token refresh link for a user, falling back
// to the direct deep link when the provider fails.
func (c *Client) TokenLink(ctx context.Context, userID int64) string {
	deepLink := fmt.Sprintf("https://t.me/%s?start=token_%d", c.botUsername, userID)
	alias := fmt.Sprintf("token_%d_%d", userID, c.now().Unix())

	short, err := c.Shorten(ctx, deepLink, alias)
	if err != nil {
		c.logger.LogWarn(ctx, "short-link provider failed, using direct link",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.IncShortlinkFallback()
		}
		return deepLink
	}
	return short
}

// VideoLink is the permanent deep link for a video. These never go through
// the provider and never expire.
func (c *Client) VideoLink(ctx context.Context, videoID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=video_%d", c.botUsername, videoID)
}
