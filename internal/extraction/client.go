// Package extraction calls the external service that turns a menu source
// into item candidates. The service is opaque: the engine neither parses
// HTML nor talks to a language model itself.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"dinefine-workers/internal/common/config"
	commonhttp "dinefine-workers/internal/common/http"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/models"
)

const extractPath = "/v1/menus/extract"

var (
	ErrExtractionFailed  = errors.New("EXTRACTION_FAILED")
	ErrExtractionTimeout = errors.New("EXTRACTION_TIMEOUT")
)

// Request identifies what to extract.
type Request struct {
	SourceKey      string `json:"sourceKey"`
	Query          string `json:"query,omitempty"`
	RestaurantName string `json:"restaurantName,omitempty"`
}

type extractResponse struct {
	Items []models.MenuItem `json:"items"`
}

type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *commonhttp.Client
	logger  logger.Logger
}

func NewClient(cfg config.ExtractionAPIConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		// the per-call context carries the deadline
		http:   commonhttp.NewClient(0),
		logger: logger.ForComponent(log, "extraction"),
	}
}

// Extract asks the service for the menu of req.SourceKey. Items without a
// name are dropped. A call that outlives the configured timeout returns
// ErrExtractionTimeout; any other failure returns ErrExtractionFailed.
func (c *Client) Extract(ctx context.Context, req Request) ([]models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["X-API-Key"] = c.apiKey
	}

	start := time.Now()
	var resp extractResponse
	err := c.http.PostJSON(ctx, c.baseURL+extractPath, headers, req, &resp)
	if err != nil {
		return nil, c.classify(ctx, req.SourceKey, err)
	}

	items := cleanItems(resp.Items)
	c.logger.Info("menu extracted", map[string]interface{}{
		"sourceKey":  req.SourceKey,
		"items":      len(items),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return items, nil
}

func (c *Client) classify(ctx context.Context, sourceKey string, err error) error {
	fields := map[string]interface{}{"sourceKey": sourceKey, "error": err}

	var netErr net.Error
	if ctx.Err() == context.DeadlineExceeded ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		c.logger.Warn("menu extraction timed out", fields)
		return fmt.Errorf("%w: after %s", ErrExtractionTimeout, c.timeout)
	}

	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		fields["status"] = statusErr.StatusCode
	}
	c.logger.Warn("menu extraction failed", fields)
	return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
}

func cleanItems(in []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(in))
	for _, item := range in {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		item.Category = strings.TrimSpace(item.Category)
		item.Ingredients = trimAll(item.Ingredients)
		item.ContainsRestricted = trimAll(item.ContainsRestricted)
		out = append(out, item)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
