// Package scraper fetches and parses the source site's unsold-auction
// listings into loosely-typed records. Everything here is best-effort:
// parsing gaps surface as missing fields, never as errors, and the
// reconciliation layer is what decides whether a gap matters.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"je-feed-v2/internal/cache"
	"je-feed-v2/internal/config"
	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"
)

// Client discovers and parses listings. Fetches go through the page cache;
// a pause between cache misses keeps the request rate polite.
type Client struct {
	http  *http.Client
	cache cache.Cache
	cfg   config.ScraperConfig
	ttl   time.Duration
	log   *logger.Logger
}

// New creates a scraper client.
func New(cfg config.ScraperConfig, pageCache cache.Cache, ttl time.Duration, log *logger.Logger) *Client {
	return &Client{
		http:  &http.Client{Timeout: cfg.FetchTimeout},
		cache: pageCache,
		cfg:   cfg,
		ttl:   ttl,
		log:   log,
	}
}

// Listings runs a full discovery pass: index pages, then one detail fetch
// per listing. Individual listing failures are logged and skipped.
func (c *Client) Listings(ctx context.Context) ([]model.Scraped, error) {
	urls, err := c.DiscoverUnsold(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover listings: %w", err)
	}
	c.log.Info("discovered listing candidates", "count", len(urls))

	items := make([]model.Scraped, 0, len(urls))
	for i, u := range urls {
		listing, err := c.ParseListing(ctx, c.absoluteURL(u))
		if err != nil {
			c.log.Warn("skipping listing", "url", u, "err", err)
			continue
		}
		c.log.Debug("parsed listing", "n", i+1, "total", len(urls), "title", listing.Str("title"))
		items = append(items, listing)
	}
	return items, nil
}

// absoluteURL resolves site-relative listing links.
func (c *Client) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http") {
		return u
	}
	return c.cfg.BaseURL + u
}

// fetch returns the page body, from cache when possible. The pause only
// applies to real network fetches.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	return c.cache.GetOrSet(ctx, url, c.ttl, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.Pause):
		}
		return body, nil
	})
}
