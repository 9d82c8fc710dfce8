// Package registry implements deterministic text matching and ranking over
// the legal-entity and geography reference registries.
package registry

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/risk-cli/internal/config"
	"github.com/sells-group/risk-cli/internal/model"
)

// maxSuggestions caps every search result list.
const maxSuggestions = 10

// minQueryLen is the minimum trimmed query length in runes; shorter queries
// return nothing rather than matching everything.
const minQueryLen = 2

// clientRegistryDescriptor labels suggestions drawn from the firm's own
// client list, which carries no pre-assigned level.
const clientRegistryDescriptor = "client registry entry"

// Matcher ranks registry and keyword matches for free-text inputs. It is
// built once from the reference data and is immutable afterwards.
type Matcher struct {
	entities       []model.RegistryEntry
	clientRegistry []string
	keywords       map[model.Level][]string
	categories     map[model.Level]string

	places     map[string]model.Level
	placeNames []string

	title cases.Caser
}

// NewMatcher builds a Matcher from the reference data. Provinces and
// countries are merged into a single lookup space keyed by title-cased name,
// so the lookup is insensitive to the casing of the reference file itself.
func NewMatcher(ref *config.Reference) *Matcher {
	m := &Matcher{
		entities:       ref.Entities,
		clientRegistry: ref.ClientRegistry,
		keywords:       ref.Keywords,
		categories:     ref.GenericCategories,
		places:         make(map[string]model.Level, len(ref.Provinces)+len(ref.Countries)),
		title:          cases.Title(language.Italian),
	}
	for name, lvl := range ref.Provinces {
		m.places[m.titleKey(name)] = lvl
	}
	for name, lvl := range ref.Countries {
		m.places[m.titleKey(name)] = lvl
	}
	m.placeNames = make([]string, 0, len(m.places))
	for name := range m.places {
		m.placeNames = append(m.placeNames, name)
	}
	sort.Strings(m.placeNames)
	return m
}

// SearchNature returns up to 10 ranked legal-entity matches for the query.
// Registry and client-registry matches are always both collected; the
// keyword fallback runs only when neither produced anything, and yields at
// most one synthetic suggestion (first keyword hit, levels 1 to 4).
func (m *Matcher) SearchNature(text string) []model.NatureSuggestion {
	query := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil
	}

	var results []model.NatureSuggestion

	for _, e := range m.entities {
		if strings.Contains(strings.ToLower(e.Name), query) {
			results = append(results, model.NatureSuggestion{
				Name:       e.Name,
				Level:      e.Level,
				Descriptor: e.Descriptor,
			})
		}
	}

	for _, name := range m.clientRegistry {
		if strings.Contains(strings.ToLower(name), query) {
			results = append(results, model.NatureSuggestion{
				Name:             name,
				Level:            model.LevelUnset,
				Descriptor:       clientRegistryDescriptor,
				IsClientRegistry: true,
			})
		}
	}

	if len(results) == 0 {
		if lvl, ok := m.keywordHit(query); ok {
			category := m.categories[lvl]
			results = append(results, model.NatureSuggestion{
				Name:       "Category: " + category,
				Level:      lvl,
				Descriptor: category,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IsClientRegistry != b.IsClientRegistry {
			return !a.IsClientRegistry
		}
		if ra, rb := levelRank(a), levelRank(b); ra != rb {
			return ra < rb
		}
		return a.Name < b.Name
	})

	if len(results) > maxSuggestions {
		results = results[:maxSuggestions]
	}
	return results
}

// levelRank orders suggestion levels with unset (client registry) last.
func levelRank(s model.NatureSuggestion) int {
	if s.Level == model.LevelUnset {
		return 999
	}
	return int(s.Level)
}

// keywordHit scans the fallback keyword table, levels 1 to 4, for the first
// keyword contained in the query.
func (m *Matcher) keywordHit(query string) (model.Level, bool) {
	for lvl := model.LevelNotSignificant; lvl <= model.LevelHighSignificance; lvl++ {
		for _, kw := range m.keywords[lvl] {
			if strings.Contains(query, kw) {
				return lvl, true
			}
		}
	}
	return model.LevelUnset, false
}

// DetectNatureLevel infers a level from free text as the user types,
// without requiring a list selection. Containment runs in the reverse
// direction from search: a registry entry matches only when its normalized
// name occurs inside the normalized text. First match in registry order
// wins; the keyword table is the fallback. Returns (LevelUnset, false)
// when nothing matches and a manual selection is required.
func (m *Matcher) DetectNatureLevel(text string) (model.Level, bool) {
	norm := normalizeNature(text)
	if norm == "" {
		return model.LevelUnset, false
	}

	for _, e := range m.entities {
		if strings.Contains(norm, normalizeNature(e.Name)) {
			return e.Level, true
		}
	}

	for lvl := model.LevelNotSignificant; lvl <= model.LevelHighSignificance; lvl++ {
		for _, kw := range m.keywords[lvl] {
			if strings.Contains(norm, normalizeNature(kw)) {
				return lvl, true
			}
		}
	}

	return model.LevelUnset, false
}

// normalizeNature lowercases and strips periods, commas and hyphens,
// preserving spaces, so "S.R.L." and "srl" compare equal.
func normalizeNature(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '-':
			return -1
		}
		return r
	}, s)
}

// SearchLocation returns up to 10 ranked geography matches for the query.
// Prefix matches sort before mere substring matches.
func (m *Matcher) SearchLocation(text string) []model.LocationSuggestion {
	query := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil
	}

	var results []model.LocationSuggestion
	for _, name := range m.placeNames {
		if strings.Contains(strings.ToLower(name), query) {
			results = append(results, model.LocationSuggestion{
				Name:  name,
				Level: m.places[name],
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		ap := strings.HasPrefix(strings.ToLower(a.Name), query)
		bp := strings.HasPrefix(strings.ToLower(b.Name), query)
		if ap != bp {
			return ap
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.Name < b.Name
	})

	if len(results) > maxSuggestions {
		results = results[:maxSuggestions]
	}
	return results
}

// LevelOf returns the risk level of a province or country, normalizing the
// name to title case first. LevelUnset means the place is not in the tables
// and the caller must handle the level explicitly.
func (m *Matcher) LevelOf(place string) model.Level {
	return m.places[m.titleKey(place)]
}

// titleKey normalizes a place name to its lookup-key form. Capitalization
// restarts after an apostrophe, so "l'aquila" keys as "L'Aquila" and
// "costa d'avorio" as "Costa D'Avorio"; the plain caser would keep the
// letter after the apostrophe lowercase and the lookup would miss.
func (m *Matcher) titleKey(s string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "'")
	for i, p := range parts {
		parts[i] = m.title.String(p)
	}
	return strings.Join(parts, "'")
}
