package normalize

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliases []byte

// AliasEntry maps one user-facing spelling to a canonical region key.
type AliasEntry struct {
	Alias  string `yaml:"alias" json:"alias"`
	Region string `yaml:"region" json:"region"`
}

type aliasFile struct {
	Aliases []AliasEntry `yaml:"aliases"`
}

type indexedAlias struct {
	AliasEntry
	key string
}

// AliasTable is the immutable, ordered alias configuration. Safe for
// concurrent readers; nothing mutates it after construction.
type AliasTable struct {
	entries   []indexedAlias
	byAlias   map[string]string
	canonical []string
	byRegion  map[string]string
}

// NewAliasTable builds a table from entries in match order.
func NewAliasTable(entries []AliasEntry) (*AliasTable, error) {
	t := &AliasTable{
		entries:  make([]indexedAlias, 0, len(entries)),
		byAlias:  make(map[string]string, len(entries)),
		byRegion: make(map[string]string),
	}

	for i, e := range entries {
		region := strings.TrimSpace(e.Region)
		alias := strings.TrimSpace(e.Alias)
		key := NormalizeKey(alias)
		if region == "" || key == "" {
			return nil, fmt.Errorf("alias entry %d: alias and region are required", i+1)
		}
		if prev, ok := t.byAlias[key]; ok {
			if prev != region {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, prev, region)
			}
			continue
		}
		t.byAlias[key] = region
		t.entries = append(t.entries, indexedAlias{AliasEntry: AliasEntry{Alias: alias, Region: region}, key: key})

		regionKey := NormalizeKey(region)
		if _, ok := t.byRegion[regionKey]; !ok {
			t.byRegion[regionKey] = region
			t.canonical = append(t.canonical, region)
		}
	}

	// A canonical key must never be claimed as an alias of another region.
	for key, region := range t.byAlias {
		if other, ok := t.byRegion[key]; ok && other != region {
			return nil, fmt.Errorf("alias %q shadows canonical region %q", key, other)
		}
	}

	return t, nil
}

// LoadAliasTable parses the YAML alias list from r.
func LoadAliasTable(r io.Reader) (*AliasTable, error) {
	var f aliasFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode alias table: %w", err)
	}
	if len(f.Aliases) == 0 {
		return nil, fmt.Errorf("alias table is empty")
	}
	return NewAliasTable(f.Aliases)
}

// LoadAliasFile reads an alias table from path, or the embedded default
// table when path is empty.
func LoadAliasFile(path string) (*AliasTable, error) {
	if path == "" {
		return DefaultAliasTable()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alias file: %w", err)
	}
	defer f.Close()
	return LoadAliasTable(f)
}

// DefaultAliasTable returns the table shipped with the binary.
func DefaultAliasTable() (*AliasTable, error) {
	return LoadAliasTable(strings.NewReader(string(defaultAliases)))
}

// Entries returns a copy of the table in match order.
func (t *AliasTable) Entries() []AliasEntry {
	out := make([]AliasEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.AliasEntry
	}
	return out
}

// Regions returns the canonical region keys in first-appearance order.
func (t *AliasTable) Regions() []string {
	return append([]string(nil), t.canonical...)
}

// Len is the number of distinct aliases.
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// NormalizeKey folds full-width characters to half-width, case-folds and
// drops all whitespace. Alias keys and user input go through the same fold.
func NormalizeKey(s string) string {
	s = width.Fold.String(s)
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
