package normalize

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// SuggestionThreshold is the minimum similarity for a fuzzy suggestion.
	SuggestionThreshold = 0.4
	// MaxSuggestions caps the suggestion list.
	MaxSuggestions = 3
)

// RegionResolver maps free-form region names onto canonical region keys.
type RegionResolver struct {
	table  *AliasTable
	logger *zap.Logger
}

func NewRegionResolver(table *AliasTable, logger *zap.Logger) *RegionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegionResolver{table: table, logger: logger}
}

// Resolve tries, in order: canonical name, exact alias, substring match in
// either direction (first alias in table order wins, not the most specific
// one), and finally fuzzy suggestions.
func (r *RegionResolver) Resolve(name string) Resolution {
	key := NormalizeKey(name)
	if key == "" {
		return absent()
	}

	if region, ok := r.table.byRegion[key]; ok {
		return resolved(region)
	}
	if region, ok := r.table.byAlias[key]; ok {
		return resolved(region)
	}
	for _, e := range r.table.entries {
		if strings.Contains(key, e.key) || strings.Contains(e.key, key) {
			return resolved(e.Region)
		}
	}

	suggestions := r.suggest(key)
	r.logger.Info("region not matched",
		zap.String("input", name),
		zap.Strings("suggestions", suggestions),
	)
	return unresolved(suggestions)
}

type scoredCandidate struct {
	name  string
	score float64
}

// suggest scores every alias and canonical name against key. Ties keep
// candidate order: aliases in table order, then canonical names.
func (r *RegionResolver) suggest(key string) []string {
	seen := make(map[string]bool, len(r.table.entries)+len(r.table.canonical))
	var scored []scoredCandidate

	consider := func(name, candidateKey string) {
		if seen[candidateKey] {
			return
		}
		seen[candidateKey] = true
		if s := Similarity(key, candidateKey); s >= SuggestionThreshold {
			scored = append(scored, scoredCandidate{name: name, score: s})
		}
	}
	for _, e := range r.table.entries {
		consider(e.Alias, e.key)
	}
	for _, region := range r.table.canonical {
		consider(region, NormalizeKey(region))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > MaxSuggestions {
		scored = scored[:MaxSuggestions]
	}

	out := make([]string, len(scored))
	for i, c := range scored {
		out[i] = c.name
	}
	return out
}
