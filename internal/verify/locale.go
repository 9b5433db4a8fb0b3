package verify

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// supportedLocales are the language tags the provider can localize verification messages into.
var supportedLocales = []string{
	"af", "ar", "ca", "zh", "zh-CN", "zh-HK", "hr", "cs", "da", "nl", "en", "en-GB", "fi", "fr", "de", "el", "he",
	"hi", "hu", "id", "it", "ja", "ko", "ms", "nb", "pl", "pt", "pt-BR", "ro", "ru", "es", "sv", "tl", "th", "tr",
	"vi",
}

// SupportedLocales returns a copy of the locale allow-list.
func SupportedLocales() []string {
	return slices.Clone(supportedLocales)
}

const wildcard = "*"

// LanguageRange is a weighted language range, as found in an Accept-Language header.
type LanguageRange struct {
	Range  string
	Weight float64
}

// NewLanguageRange returns a range with the maximum weight.
func NewLanguageRange(r string) LanguageRange {
	return LanguageRange{Range: r, Weight: 1}
}

// ParseLanguageRanges parses an Accept-Language header value into ranges ordered by descending weight. Entries
// that are not well-formed are dropped. A range using a deprecated language code is followed by its canonical
// equivalent with the same weight.
func ParseLanguageRanges(acceptLanguage string) []LanguageRange {
	var ranges []LanguageRange
	for _, entry := range strings.Split(acceptLanguage, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		r, params, _ := strings.Cut(entry, ";")
		r = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(r), "_", "-"))
		if !isWellFormedRange(r) {
			continue
		}

		weight, ok := parseWeight(params)
		if !ok {
			continue
		}

		ranges = append(ranges, LanguageRange{Range: r, Weight: weight})
		if equivalent, ok := canonicalRange(r); ok {
			ranges = append(ranges, LanguageRange{Range: equivalent, Weight: weight})
		}
	}

	return sortByWeight(ranges)
}

func parseWeight(params string) (float64, bool) {
	params = strings.TrimSpace(params)
	if params == "" {
		return 1, true
	}

	key, value, found := strings.Cut(params, "=")
	if !found || strings.TrimSpace(key) != "q" {
		return 0, false
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || weight < 0 || weight > 1 {
		return 0, false
	}

	return weight, true
}

func isWellFormedRange(r string) bool {
	if r == wildcard {
		return true
	}

	subtags := strings.Split(r, "-")
	if subtags[0] == wildcard {
		return false
	}

	concrete := make([]string, 0, len(subtags))
	for _, subtag := range subtags {
		if subtag != wildcard {
			concrete = append(concrete, subtag)
		}
	}

	_, err := language.Parse(strings.Join(concrete, "-"))
	return err == nil
}

// canonicalRange returns the canonical spelling of a range that uses a deprecated language code, e.g. "iw-il"
// becomes "he-il". Ranges with wildcards are left alone.
func canonicalRange(r string) (string, bool) {
	if strings.Contains(r, wildcard) {
		return "", false
	}

	tag, err := language.Parse(r)
	if err != nil {
		return "", false
	}

	canonical := strings.ToLower(tag.String())
	if canonical == r {
		return "", false
	}
	return canonical, true
}

func sortByWeight(ranges []LanguageRange) []LanguageRange {
	sorted := slices.Clone(ranges)
	slices.SortStableFunc(sorted, func(a, b LanguageRange) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// FindBestLocale performs a "Lookup" (RFC 4647, section 3.4) of the ranges against the supported tags. Ranges are
// tried by descending weight, each one progressively truncated until it matches a tag. Ranges with a zero weight
// never match and exclude the tags they would match. The returned tag is spelled as in supported.
func FindBestLocale(ranges []LanguageRange, supported []string) (string, bool) {
	var excluded []string
	for _, r := range ranges {
		if r.Weight <= 0 {
			excluded = append(excluded, strings.ToLower(r.Range))
		}
	}

	for _, r := range sortByWeight(ranges) {
		if r.Weight <= 0 {
			continue
		}

		candidate := strings.ToLower(strings.TrimSpace(r.Range))
		if candidate == wildcard {
			continue
		}

		for candidate != "" {
			for _, tag := range supported {
				if rangeMatchesTag(candidate, tag) && !isExcluded(excluded, tag) {
					return tag, true
				}
			}
			candidate = truncateRange(candidate)
		}
	}

	return "", false
}

func isExcluded(excluded []string, tag string) bool {
	return slices.ContainsFunc(excluded, func(r string) bool {
		return rangeMatchesTag(r, tag)
	})
}

// rangeMatchesTag compares subtag by subtag, a "*" subtag in the range matching any single subtag.
func rangeMatchesTag(r, tag string) bool {
	rangeSubtags := strings.Split(r, "-")
	tagSubtags := strings.Split(strings.ToLower(tag), "-")
	if len(rangeSubtags) != len(tagSubtags) {
		return false
	}

	for i, subtag := range rangeSubtags {
		if subtag != wildcard && subtag != tagSubtags[i] {
			return false
		}
	}

	return true
}

// truncateRange removes the last subtag, along with a singleton left dangling at the end, so "zh-hant-x-abc"
// becomes "zh-hant".
func truncateRange(r string) string {
	i := strings.LastIndex(r, "-")
	if i < 0 {
		return ""
	}
	r = r[:i]

	if i = strings.LastIndex(r, "-"); i >= 0 && len(r)-i-1 == 1 {
		r = r[:i]
	}

	return r
}
