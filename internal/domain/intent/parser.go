package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"affiliate-notify/internal/domain/marketplace"
)

const minTagLength = 3

var (
	nonWord  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	keyClean = regexp.MustCompile(`[^a-z0-9]+`)
)

type platformEntry struct {
	platform   marketplace.Platform
	pattern    *regexp.Regexp
	normalized string
}

var platformTable = buildPlatformTable()

func buildPlatformTable() []platformEntry {
	aliases := marketplace.Aliases()
	out := make([]platformEntry, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, platformEntry{
			platform:   a.Platform,
			pattern:    wholeWordPattern(a.Key),
			normalized: keyClean.ReplaceAllString(a.Key, ""),
		})
	}
	return out
}

// Parse turns free text into a ParsedIntent. It never fails: anything it
// cannot extract is left unset.
func Parse(text string) ParsedIntent {
	lower := strings.ToLower(text)

	out := ParsedIntent{
		Tags:      []string{},
		Platforms: []marketplace.Platform{},
	}

	bounds := ExtractPrice(lower)
	out.MinPrice = bounds.Min
	out.MaxPrice = bounds.Max

	category, matched := detectCategory(lower)
	if category != "" {
		out.Category = &category
	}
	out.Platforms = detectPlatforms(lower)
	out.Tags = extractTags(lower, category, matched)
	return out
}

// DetectCategory returns the label of the most specific lexicon key found in
// text, or "" when nothing matches.
func DetectCategory(text string) string {
	label, _ := detectCategory(strings.ToLower(text))
	return label
}

func detectCategory(lower string) (string, *categoryEntry) {
	for i := range categoryTable {
		if categoryTable[i].pattern.MatchString(lower) {
			return categoryTable[i].label, &categoryTable[i]
		}
	}
	return "", nil
}

// DetectPlatforms returns every marketplace named in text, ordered by first
// mention, without duplicates.
func DetectPlatforms(text string) []marketplace.Platform {
	return detectPlatforms(strings.ToLower(text))
}

func detectPlatforms(lower string) []marketplace.Platform {
	type hit struct {
		offset int
		index  int
	}
	var hits []hit
	for i, e := range platformTable {
		loc := e.pattern.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		hits = append(hits, hit{offset: loc[0], index: i})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].offset != hits[b].offset {
			return hits[a].offset < hits[b].offset
		}
		return hits[a].index < hits[b].index
	})

	out := []marketplace.Platform{}
	seen := map[marketplace.Platform]bool{}
	for _, h := range hits {
		p := platformTable[h.index].platform
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func extractTags(lower, category string, matched *categoryEntry) []string {
	tags := []string{}
	seen := map[string]bool{}
	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	for _, m := range specToken.FindAllString(lower, -1) {
		add(strings.Join(strings.Fields(m), ""))
	}

	excluded := map[string]bool{}
	if category != "" {
		label := strings.ToLower(category)
		excluded[label] = true
		for _, w := range strings.Fields(label) {
			excluded[w] = true
		}
	}
	if matched != nil {
		for _, w := range matched.absorbed {
			excluded[w] = true
		}
	}

	for _, tok := range tokenize(lower) {
		if !keepToken(tok) || excluded[tok] || overlapsPlatformKey(tok) {
			continue
		}
		add(tok)
	}
	return tags
}

func keepToken(tok string) bool {
	if utf8.RuneCountInString(tok) < minTagLength {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(tok); unicode.IsDigit(r) {
		return false
	}
	if _, ok := stopWords[tok]; ok {
		return false
	}
	if _, ok := unitWords[tok]; ok {
		return false
	}
	return true
}

func overlapsPlatformKey(tok string) bool {
	for _, e := range platformTable {
		if strings.Contains(tok, e.normalized) || strings.Contains(e.normalized, tok) {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}
