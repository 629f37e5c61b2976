package matching

import (
	"fmt"
	"sort"
	"strings"
)

// FallbackScore is the similarity given to manual-search placeholders.
const FallbackScore = 0.8

// maxFallbacks caps the number of placeholder candidates.
const maxFallbacks = 3

// RawRecord is a product as scraped from a storefront page, before scoring.
// Empty fields mean the value could not be extracted.
type RawRecord struct {
	ID       string
	Name     string
	Price    string
	ImageURL string
	Link     string
}

// Candidate is a product considered as a match for a task.
type Candidate struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Price      string  `json:"price,omitempty"`
	ImageURL   string  `json:"image,omitempty"`
	Link       string  `json:"link,omitempty"`
	Similarity float64 `json:"similarity"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// Rank scores each record against query and returns candidates sorted by
// descending similarity. Equal scores keep their input order. Records without
// a name are dropped. maxResults <= 0 disables truncation.
func Rank(query string, records []RawRecord, maxResults int) []Candidate {
	candidates := make([]Candidate, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:         r.ID,
			Name:       name,
			Price:      r.Price,
			ImageURL:   r.ImageURL,
			Link:       r.Link,
			Similarity: Similarity(query, name),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if maxResults > 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}

// Fallback builds placeholder candidates that send the user to a manual
// search at searchURL. At most three are returned.
func Fallback(term, searchURL string, maxResults int) []Candidate {
	n := maxFallbacks
	if maxResults > 0 && maxResults < n {
		n = maxResults
	}

	result := make([]Candidate, 0, n)
	for i := 1; i <= n; i++ {
		result = append(result, Candidate{
			ID:         fmt.Sprintf("fallback-%d", i),
			Name:       fmt.Sprintf("Search for %q on REWE", term),
			Price:      "Click to search",
			Link:       searchURL,
			Similarity: FallbackScore,
			Fallback:   true,
		})
	}
	return result
}
