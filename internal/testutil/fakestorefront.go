package testutil

import (
	"context"
	"net/url"
	"sync"

	"rewecart/internal/matching"
)

// FakeStorefront serves canned search results keyed by term.
type FakeStorefront struct {
	mu       sync.Mutex
	products map[string][]matching.RawRecord
	searches []string

	// Err is returned by every search when set.
	Err error
}

// NewFakeStorefront creates a FakeStorefront with no products.
func NewFakeStorefront() *FakeStorefront {
	return &FakeStorefront{products: make(map[string][]matching.RawRecord)}
}

// AddProducts registers the records returned when searching term.
func (f *FakeStorefront) AddProducts(term string, records ...matching.RawRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[term] = append(f.products[term], records...)
}

// Searches returns the searched terms in call order.
func (f *FakeStorefront) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// Records implements transfer.RecordSource.
func (f *FakeStorefront) Records(ctx context.Context, term string, limit int) ([]matching.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, term)
	if f.Err != nil {
		return nil, f.Err
	}
	records := f.products[term]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return append([]matching.RawRecord(nil), records...), nil
}

// SearchURL implements transfer.RecordSource.
func (f *FakeStorefront) SearchURL(term string) string {
	return "https://shop.example/productList?search=" + url.QueryEscape(term)
}

// CartURL returns the fake cart page.
func (f *FakeStorefront) CartURL() string {
	return "https://shop.example/checkout/basket"
}
