package transfer

import (
	"context"

	"github.com/rs/zerolog"

	"rewecart/internal/matching"
	"rewecart/internal/settings"
)

// RecordSource produces raw product records for a search term.
type RecordSource interface {
	// Records returns at most limit raw records for term.
	Records(ctx context.Context, term string, limit int) ([]matching.RawRecord, error)

	// SearchURL returns the storefront search page for term.
	SearchURL(term string) string
}

// MappingLookup finds a remembered product for a task name.
type MappingLookup interface {
	Get(ctx context.Context, taskName string) (matching.Candidate, bool, error)
}

// Source tells where the candidates of a Resolution came from.
type Source string

const (
	SourceMapping  Source = "mapping"
	SourceSearch   Source = "search"
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of resolving one task to product candidates.
type Resolution struct {
	Term       string
	SearchURL  string
	Source     Source
	Candidates []matching.Candidate

	// Auto is the candidate that can be chosen without asking, if any.
	Auto *matching.Candidate
}

// Resolver turns a task into ranked product candidates: a remembered
// mapping first, then a storefront search, then manual-search placeholders.
type Resolver struct {
	mappings MappingLookup
	source   RecordSource
	settings settings.Settings
	log      zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(mappings MappingLookup, source RecordSource, s settings.Settings, log zerolog.Logger) *Resolver {
	return &Resolver{
		mappings: mappings,
		source:   source,
		settings: s,
		log:      log,
	}
}

// Resolve finds candidates for taskName searching for term. Search failures
// degrade to fallback candidates; only mapping lookup errors are returned.
func (r *Resolver) Resolve(ctx context.Context, taskName, term string) (Resolution, error) {
	res := Resolution{
		Term:      term,
		SearchURL: r.source.SearchURL(term),
	}

	if r.mappings != nil {
		product, ok, err := r.mappings.Get(ctx, taskName)
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			r.log.Debug().Str("task", taskName).Str("product", product.Name).Msg("using saved mapping")
			res.Source = SourceMapping
			res.Candidates = []matching.Candidate{product}
			res.Auto = &res.Candidates[0]
			return res, nil
		}
	}

	limit := r.settings.MaxSearchResults
	records, err := r.source.Records(ctx, term, limit)
	if err != nil {
		r.log.Debug().Err(err).Str("term", term).Msg("product extraction failed, using fallback")
		return r.fallback(res), nil
	}

	candidates := matching.Rank(term, records, limit)
	if !r.settings.FuzzyMatching {
		candidates = containmentOnly(candidates)
	}
	if len(candidates) == 0 {
		r.log.Debug().Str("term", term).Msg("no products found, using fallback")
		return r.fallback(res), nil
	}

	res.Source = SourceSearch
	res.Candidates = candidates
	res.Auto = r.autoPick(candidates)
	return res, nil
}

func (r *Resolver) fallback(res Resolution) Resolution {
	res.Source = SourceFallback
	res.Candidates = matching.Fallback(res.Term, res.SearchURL, r.settings.MaxSearchResults)
	return res
}

// autoPick returns the only candidate reaching the similarity threshold.
func (r *Resolver) autoPick(candidates []matching.Candidate) *matching.Candidate {
	var pick *matching.Candidate
	for i := range candidates {
		if candidates[i].Similarity < r.settings.SimilarityThreshold {
			continue
		}
		if pick != nil {
			return nil
		}
		pick = &candidates[i]
	}
	return pick
}

// containmentOnly drops candidates scoring below the containment band.
func containmentOnly(candidates []matching.Candidate) []matching.Candidate {
	var kept []matching.Candidate
	for _, c := range candidates {
		if c.Similarity >= matching.ContainedScore {
			kept = append(kept, c)
		}
	}
	return kept
}
