package outreach

import (
	"regexp"
	"strings"

	"github.com/poiesic/coldmail/core"
)

var (
	genericPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)connect\b`),
		regexp.MustCompile(`(?i)opportunity\b`),
		regexp.MustCompile(`(?i)excited\b`),
		regexp.MustCompile(`(?i)reach out\b`),
		regexp.MustCompile(`(?i)following up\b`),
		regexp.MustCompile(`(?i)touch base\b`),
	}

	positiveMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)specific\b.*\bmention`),
		regexp.MustCompile(`(?i)research\b`),
		regexp.MustCompile(`(?i)\?\s*$`),
		regexp.MustCompile(`(?i)your\b.*\b(work|approach|product)`),
	}

	sentenceBreak = regexp.MustCompile(`[.!?]`)
)

// Grade scores a draft on a 0-10 scale. Generic outreach phrases cost
// uniqueness, three or four sentence fragments earn full flow, and signs of
// research or a closing question earn style points.
func Grade(text string) core.Grade {
	if text == "" {
		return core.Grade{Diagnostics: "Empty email"}
	}

	uniqueness := 10 - countMatches(genericPhrases, text)

	flow := 5
	if n := len(sentenceBreak.Split(strings.TrimSpace(text), -1)); n == 3 || n == 4 {
		flow = 10
	}

	style := countMatches(positiveMarkers, text) * 2

	overall := min(10, max(0, (uniqueness+flow+style)/3))

	var diagnostics string
	switch {
	case uniqueness < 5:
		diagnostics = "Too generic"
	case flow >= 7:
		diagnostics = "Good structure"
	default:
		diagnostics = "Needs more specifics"
	}

	return core.Grade{
		Grade:       overall,
		Uniqueness:  max(1, uniqueness),
		Flow:        max(1, flow),
		Style:       max(1, style),
		Diagnostics: diagnostics,
	}
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}
