// Package storefront scrapes product records from the REWE online shop.
package storefront

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"rewecart/internal/matching"
)

// DefaultBaseURL is the storefront origin.
const DefaultBaseURL = "https://shop.rewe.de"

const (
	searchPath = "/productList"
	cartPath   = "/checkout/basket"

	// RequestTimeout bounds a single page fetch.
	RequestTimeout = 10 * time.Second

	// maxPageSize caps how much of a search page is read.
	maxPageSize = 8 << 20

	userAgent = "Mozilla/5.0 (compatible; rewecart/1.0)"
)

// Scraper fetches storefront search pages and extracts raw product records.
type Scraper struct {
	baseURL string
	base    *url.URL
	client  *http.Client
	log     zerolog.Logger
}

// New creates a Scraper for baseURL. An empty baseURL selects DefaultBaseURL;
// a nil client gets one with RequestTimeout.
func New(baseURL string, client *http.Client, log zerolog.Logger) (*Scraper, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse storefront url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse storefront url: %q is not absolute", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	return &Scraper{
		baseURL: baseURL,
		base:    base,
		client:  client,
		log:     log,
	}, nil
}

// SearchURL returns the search results page for term.
func (s *Scraper) SearchURL(term string) string {
	return s.baseURL + searchPath + "?search=" + url.QueryEscape(term)
}

// CartURL returns the shopping cart page.
func (s *Scraper) CartURL() string {
	return s.baseURL + cartPath
}

// Records fetches the search page for term and extracts at most limit
// records from it. An empty result is not an error.
func (s *Scraper) Records(ctx context.Context, term string, limit int) ([]matching.RawRecord, error) {
	page := s.SearchURL(term)

	doc, err := s.fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	e := extractor{base: s.base, searchURL: s.SearchURL}
	records := e.records(doc, limit)
	s.log.Debug().Str("term", term).Int("records", len(records)).Msg("search page scraped")
	return records, nil
}

func (s *Scraper) fetch(ctx context.Context, page string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch search page: HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return doc, nil
}
