package outreach

import (
	"regexp"
	"slices"
	"strings"
)

// maxThemes bounds the keywords listed by Commonalities.
const maxThemes = 10

var longWord = regexp.MustCompile(`\b\w{4,}\b`)

// keywords returns the set of lowercase words of at least four characters.
func keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range longWord.FindAllString(strings.ToLower(text), -1) {
		set[w] = struct{}{}
	}
	return set
}

// SharedKeywords returns the sorted keywords that appear in both texts.
func SharedKeywords(a, b string) []string {
	left := keywords(a)
	var shared []string
	for w := range keywords(b) {
		if _, ok := left[w]; ok {
			shared = append(shared, w)
		}
	}
	slices.Sort(shared)
	return shared
}

// Commonalities compares two biographies and returns the shared keywords and
// a "Common themes: ..." hint listing at most ten of them. The hint is empty
// when nothing is shared.
func Commonalities(a, b string) ([]string, string) {
	shared := SharedKeywords(a, b)
	if len(shared) == 0 {
		return nil, ""
	}
	return shared, "Common themes: " + strings.Join(shared[:min(maxThemes, len(shared))], ", ")
}
