// Package catalog searches the third-party retail product API. Search
// failures are swallowed: a turn degrades to a style-only answer instead of
// erroring when the catalog is unreachable.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stylemuse/shopassist/internal/cache"
	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/models"
)

type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	cacheTTL   time.Duration
	httpClient *http.Client
	cache      *cache.Cache // nil disables caching
}

func NewClient(cfg config.CatalogConfig, c *cache.Cache) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		cache:      c,
	}
}

type searchResponse struct {
	Results []struct {
		ASIN          string   `json:"asin"`
		Title         string   `json:"title"`
		Price         float64  `json:"price"`
		OriginalPrice *float64 `json:"original_price"`
		Rating        float64  `json:"rating"`
		ReviewCount   int      `json:"review_count"`
		IsPrime       bool     `json:"is_prime"`
		Image         string   `json:"image"`
		Link          string   `json:"link"`
		Category      string   `json:"category"`
		Brand         string   `json:"brand"`
	} `json:"results"`
}

// Search queries the catalog for the given terms. It always returns a
// (possibly empty) slice: any transport, HTTP or decode failure is logged and
// swallowed so the conversation turn can proceed without products.
func (c *Client) Search(ctx context.Context, terms []string, limit int) []models.Product {
	if c.baseURL == "" || len(terms) == 0 {
		return []models.Product{}
	}
	if limit <= 0 || limit > c.maxResults {
		limit = c.maxResults
	}

	query := strings.Join(terms, " ")
	cacheKey := fmt.Sprintf("catalog:%s:%d", query, limit)

	if c.cache != nil {
		var cached []models.Product
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached
		}
	}

	products, err := c.search(ctx, query, limit)
	if err != nil {
		slog.Warn("catalog search failed", "query", query, "error", err)
		return []models.Product{}
	}

	if c.cache != nil && len(products) > 0 {
		if err := c.cache.Set(ctx, cacheKey, products, c.cacheTTL); err != nil {
			slog.Debug("catalog cache write failed", "error", err)
		}
	}

	return products
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	u := fmt.Sprintf("%s/v1/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]models.Product, 0, len(sr.Results))
	for _, r := range sr.Results {
		products = append(products, models.Product{
			ID:            r.ASIN,
			Title:         r.Title,
			Price:         r.Price,
			OriginalPrice: r.OriginalPrice,
			Rating:        r.Rating,
			ReviewCount:   r.ReviewCount,
			IsPrime:       r.IsPrime,
			ImageURL:      r.Image,
			ProductURL:    r.Link,
			Category:      r.Category,
			Brand:         r.Brand,
		})
	}
	return products, nil
}
