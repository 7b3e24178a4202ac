package blob

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
)

// Selector resolves a logical asset query to one concrete blob name via
// listing and uniform random choice.
type Selector struct {
	store Store
	pick  func(n int) int
	log   *slog.Logger
}

// NewSelector constructs a selector over the given store.
func NewSelector(store Store, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}

	return &Selector{
		store: store,
		pick:  rand.IntN,
		log:   log.With("component", "blob.selector"),
	}
}

// PickRandom lists all names matching the query, deduplicates them, drops
// any name identical to the query prefix (the directory marker placeholder),
// and returns one chosen uniformly at random.
//
// Randomness does not need to be cryptographically secure; selection only
// spreads replies across the available assets.
func (s *Selector) PickRandom(ctx context.Context, query Query) (string, error) {
	names, err := s.store.List(ctx, query)
	if err != nil {
		return "", fmt.Errorf("list assets under %q: %w", query.Prefix, err)
	}

	unique := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == query.Prefix {
			continue
		}
		unique[name] = struct{}{}
	}

	if len(unique) == 0 {
		return "", &NoAssetError{Prefix: query.Prefix}
	}

	candidates := make([]string, 0, len(unique))
	for name := range unique {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	chosen := candidates[s.pick(len(candidates))]
	s.log.Debug("Selected asset", "prefix", query.Prefix, "name", chosen, "candidates", len(candidates))
	return chosen, nil
}
