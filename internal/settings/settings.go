// Package settings holds the user-editable options and their persistence.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rewecart/internal/store"
)

// storeKey is the key of the settings blob in the settings namespace.
const storeKey = "extensionSettings"

// Settings are the user-editable options.
type Settings struct {
	SimilarityThreshold float64 `json:"similarityThreshold"`
	MaxSearchResults    int     `json:"maxSearchResults"`
	FuzzyMatching       bool    `json:"fuzzyMatching"`
	AutoOpenCart        bool    `json:"autoOpenCart"`
	ShowNotifications   bool    `json:"showNotifications"`
	DefaultTag          string  `json:"defaultTag"`
	APIToken            string  `json:"apiToken"`
}

// Defaults returns the documented default settings.
func Defaults() Settings {
	return Settings{
		SimilarityThreshold: 0.7,
		MaxSearchResults:    5,
		FuzzyMatching:       true,
		AutoOpenCart:        true,
		ShowNotifications:   true,
	}
}

// Decode parses a settings blob, filling missing keys from Defaults.
func Decode(data []byte) (Settings, error) {
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Keys returns the settable option names in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(s *Settings, value string) error{
	"similarityThreshold": func(s *Settings, value string) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || !validThreshold(f) {
			return fmt.Errorf("similarityThreshold must be a number between 0 and 1: %s", value)
		}
		s.SimilarityThreshold = f
		return nil
	},
	"maxSearchResults": func(s *Settings, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil || !validMaxResults(n) {
			return fmt.Errorf("maxSearchResults must be a positive integer: %s", value)
		}
		s.MaxSearchResults = n
		return nil
	},
	"fuzzyMatching":     boolSetter(func(s *Settings) *bool { return &s.FuzzyMatching }),
	"autoOpenCart":      boolSetter(func(s *Settings) *bool { return &s.AutoOpenCart }),
	"showNotifications": boolSetter(func(s *Settings) *bool { return &s.ShowNotifications }),
	"defaultTag": func(s *Settings, value string) error {
		s.DefaultTag = strings.TrimSpace(value)
		return nil
	},
	"apiToken": func(s *Settings, value string) error {
		s.APIToken = strings.TrimSpace(value)
		return nil
	},
}

func validThreshold(f float64) bool { return f >= 0 && f <= 1 }
func validMaxResults(n int) bool    { return n >= 1 }

// Validate checks the numeric options against the ranges Set accepts.
func (s Settings) Validate() error {
	if !validThreshold(s.SimilarityThreshold) {
		return fmt.Errorf("similarityThreshold must be a number between 0 and 1: %v", s.SimilarityThreshold)
	}
	if !validMaxResults(s.MaxSearchResults) {
		return fmt.Errorf("maxSearchResults must be a positive integer: %d", s.MaxSearchResults)
	}
	return nil
}

func boolSetter(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false: %s", value)
		}
		*field(s) = b
		return nil
	}
}

// ErrUnknownKey is returned by Set for an unknown option name.
var ErrUnknownKey = errors.New("unknown setting")

// Set parses value and assigns it to the option named key.
// Key lookup is case-insensitive.
func (s *Settings) Set(key, value string) error {
	for name, set := range setters {
		if strings.EqualFold(name, key) {
			return set(s, value)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Repository loads and saves Settings in a store.
type Repository struct {
	store store.Store
}

// NewRepository creates a Repository over s.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Load returns the stored settings merged over Defaults.
// Missing settings yield Defaults.
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	data, err := r.store.Get(ctx, store.Settings, storeKey)
	if errors.Is(err, store.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return Decode(data)
}

// Save stores s.
func (r *Repository) Save(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.store.Put(ctx, store.Settings, storeKey, data)
}

// Reset restores Defaults, keeping the stored API token.
func (r *Repository) Reset(ctx context.Context) (Settings, error) {
	current, err := r.Load(ctx)
	if err != nil {
		return Settings{}, err
	}
	s := Defaults()
	s.APIToken = current.APIToken
	if err := r.Save(ctx, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
