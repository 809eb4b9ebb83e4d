// Package location canonicalizes depot location names. Movement logs
// arrive with inconsistent spacing, hyphenation and casing; every
// comparison in the engine goes through Normalize first.
package location

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	sepRe      = regexp.MustCompile(`[\s-]+`)
	multiSepRe = regexp.MustCompile(`_+`)

	stablingRe = regexp.MustCompile(`^([A-Za-z]+)_Stb(\d{2})_S(\d)$`)
	bayRe      = regexp.MustCompile(`^([A-Za-z]+)_(Clean|Inspect|Maint)(\d{2})$`)
	entranceRe = regexp.MustCompile(`^([A-Za-z]+)_(Entrance)$`)
)

// Normalize converts a location name to its canonical underscore form:
// whitespace and hyphens collapse to single underscores and every token
// is title-cased. Normalize is idempotent.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = sepRe.ReplaceAllString(s, "_")
	s = multiSepRe.ReplaceAllString(s, "_")
	parts := strings.Split(s, "_")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, strings.ToUpper(p[:1])+strings.ToLower(p[1:]))
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "_")
}

// Kind classifies a parsed location.
type Kind string

const (
	KindUnknown  Kind = ""
	KindStabling Kind = "Stabling"
	KindClean    Kind = "Clean"
	KindInspect  Kind = "Inspect"
	KindMaint    Kind = "Maint"
	KindEntrance Kind = "Entrance"
)

// Info is the structured form of a location name such as
// Central_Stb05_S1, Central_Clean01 or Central_Entrance.
type Info struct {
	Raw   string
	Value string // normalized form
	Depot string
	Type  Kind
	Index int // bay index for Clean/Inspect/Maint
	Bay   int // stabling bay number
	Slot  int // stabling slot within the bay
}

// Parse extracts depot, zone and index information from a location
// name. Unknown patterns still return the normalized value.
func Parse(name string) Info {
	v := Normalize(name)
	info := Info{Raw: name, Value: v}
	if m := stablingRe.FindStringSubmatch(v); m != nil {
		info.Depot = m[1]
		info.Type = KindStabling
		info.Bay, _ = strconv.Atoi(m[2])
		info.Slot, _ = strconv.Atoi(m[3])
		return info
	}
	if m := bayRe.FindStringSubmatch(v); m != nil {
		info.Depot = m[1]
		info.Type = Kind(m[2])
		info.Index, _ = strconv.Atoi(m[3])
		return info
	}
	if m := entranceRe.FindStringSubmatch(v); m != nil {
		info.Depot = m[1]
		info.Type = KindEntrance
		return info
	}
	return info
}

// Vocabulary is the set of known location names, normalized. It is
// derived from the union of all source and destination values ever
// observed in the movement log.
type Vocabulary map[string]struct{}

// NewVocabulary builds a vocabulary from raw location names.
func NewVocabulary(names []string) Vocabulary {
	v := make(Vocabulary, len(names))
	for _, n := range names {
		if norm := Normalize(n); norm != "" {
			v[norm] = struct{}{}
		}
	}
	return v
}

// Contains reports whether the normalized form of name is known.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v[Normalize(name)]
	return ok
}

// Names returns the vocabulary sorted for deterministic output.
func (v Vocabulary) Names() []string {
	out := make([]string, 0, len(v))
	for n := range v {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

const maxSuggestions = 5

// Suggest returns up to five known locations resembling the given name:
// prefix matches first, substring matches only when no prefix matches.
func (v Vocabulary) Suggest(name string) []string {
	val := strings.ToLower(Normalize(name))
	if val == "" {
		return nil
	}
	var prefix, contains []string
	for _, cand := range v.Names() {
		lc := strings.ToLower(cand)
		switch {
		case strings.HasPrefix(lc, val):
			prefix = append(prefix, cand)
		case strings.Contains(lc, val):
			contains = append(contains, cand)
		}
	}
	if len(prefix) > 0 {
		if len(prefix) > maxSuggestions {
			prefix = prefix[:maxSuggestions]
		}
		return prefix
	}
	if len(contains) > maxSuggestions {
		contains = contains[:maxSuggestions]
	}
	return contains
}
