package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/metrics"
)

const (
	// DefaultBaseURL is the public card catalog endpoint.
	DefaultBaseURL = "https://api.scryfall.com"

	userAgent = "deckscout/1.0"

	// maxErrorBodyBytes caps how much of an error response body is read
	// for diagnostics.
	maxErrorBodyBytes = 4 * 1024
)

// Client talks to the upstream card catalog over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a catalog client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ListSets fetches the full upstream set catalog.
func (c *Client) ListSets(ctx context.Context) ([]Set, error) {
	var resp setListResponse
	if err := c.getJSON(ctx, c.baseURL+"/sets", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SearchCardsPage fetches one page of cards for a set code. The caller must
// keep requesting pages until hasMore is false.
func (c *Client) SearchCardsPage(ctx context.Context, setCode string, page int) ([]domain.CardSummary, bool, error) {
	q := url.Values{}
	q.Set("q", "e:"+setCode)
	q.Set("page", strconv.Itoa(page))

	var resp cardListResponse
	if err := c.getJSON(ctx, c.baseURL+"/cards/search?"+q.Encode(), &resp); err != nil {
		return nil, false, err
	}
	return resp.Data, resp.HasMore, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Warn("Upstream catalog returned non-200",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
			zap.Duration("elapsed", time.Since(start)),
		)
		return fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	metrics.UpstreamRequests.WithLabelValues("ok").Inc()

	c.logger.Debug("Upstream catalog request completed",
		zap.String("url", rawURL),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
