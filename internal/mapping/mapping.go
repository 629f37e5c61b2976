// Package mapping remembers which product the user chose for a task name.
package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rewecart/internal/matching"
	"rewecart/internal/store"
)

// Cache maps case-folded task names to products. Entries never expire.
type Cache struct {
	store store.Store
}

// New creates a Cache over s.
func New(s store.Store) *Cache {
	return &Cache{store: s}
}

// Key returns the storage key for a task name.
func Key(taskName string) string {
	return strings.ToLower(taskName)
}

// Get returns the product stored for taskName.
// The boolean is false when no mapping exists.
func (c *Cache) Get(ctx context.Context, taskName string) (matching.Candidate, bool, error) {
	data, err := c.store.Get(ctx, store.Mappings, Key(taskName))
	if errors.Is(err, store.ErrNotFound) {
		return matching.Candidate{}, false, nil
	}
	if err != nil {
		return matching.Candidate{}, false, err
	}

	var product matching.Candidate
	if err := json.Unmarshal(data, &product); err != nil {
		return matching.Candidate{}, false, fmt.Errorf("decode mapping %q: %w", Key(taskName), err)
	}
	return product, true, nil
}

// Put stores product for taskName, replacing any previous mapping.
func (c *Cache) Put(ctx context.Context, taskName string, product matching.Candidate) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return c.store.Put(ctx, store.Mappings, Key(taskName), data)
}

// PutAll stores every mapping. Keys are case-folded.
func (c *Cache) PutAll(ctx context.Context, mappings map[string]matching.Candidate) error {
	for name, product := range mappings {
		if err := c.Put(ctx, name, product); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the mapping for taskName.
func (c *Cache) Delete(ctx context.Context, taskName string) error {
	return c.store.Delete(ctx, store.Mappings, Key(taskName))
}

// All returns every stored mapping keyed by case-folded task name.
func (c *Cache) All(ctx context.Context) (map[string]matching.Candidate, error) {
	raw, err := c.store.List(ctx, store.Mappings)
	if err != nil {
		return nil, err
	}

	result := make(map[string]matching.Candidate, len(raw))
	for key, data := range raw {
		var product matching.Candidate
		if err := json.Unmarshal(data, &product); err != nil {
			return nil, fmt.Errorf("decode mapping %q: %w", key, err)
		}
		result[key] = product
	}
	return result, nil
}

// Count returns the number of stored mappings.
func (c *Cache) Count(ctx context.Context) (int, error) {
	raw, err := c.store.List(ctx, store.Mappings)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// Clear removes every mapping.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, store.Mappings)
}
