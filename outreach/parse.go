package outreach

import (
	"regexp"
	"strings"
)

const placeholder = "[Your Company]"

var (
	titleLine  = regexp.MustCompile(`(?:Title|Subject):\s*(Discussion.+)`)
	signOff    = regexp.MustCompile(`(?i)(Best regards.*|Thanks.*|Sincerely.*)`)
	headerLine = regexp.MustCompile(`(?i)^(Subject|Title):.*`)
	word       = regexp.MustCompile(`\w+`)
)

// splitAdapted cleans an adapted email reply and separates its subject line.
// A reply without a leading "Subject:" line is returned whole as the body.
func splitAdapted(reply string) (subject, body string) {
	result := strings.TrimSpace(reply)
	if strings.HasPrefix(strings.ToLower(result), "here is the adapted email") {
		if _, rest, ok := strings.Cut(result, "\n"); ok {
			result = strings.TrimSpace(rest)
		} else {
			result = ""
		}
	}
	result = strings.ReplaceAll(result, placeholder, "")
	result = strings.ReplaceAll(result, "  ", " ")
	result = strings.TrimSpace(result)

	first, rest, _ := strings.Cut(result, "\n")
	if strings.HasPrefix(strings.ToLower(first), "subject:") {
		_, subject, _ = strings.Cut(first, ":")
		return strings.TrimSpace(subject), strings.TrimSpace(rest)
	}
	return "", result
}

// parseVariant extracts the body and title from a variant reply. ok is false
// when no body could be found.
func parseVariant(reply, focus string) (body, title string, ok bool) {
	raw := reply
	if i := strings.Index(raw, "Title:"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Email:"))
	if raw == "" {
		return "", "", false
	}

	body = signOff.ReplaceAllString(raw, "")
	body = strings.TrimSpace(headerLine.ReplaceAllString(body, ""))
	if body == "" {
		return "", "", false
	}

	if m := titleLine.FindStringSubmatch(reply); m != nil {
		return body, strings.TrimSpace(m[1]), true
	}
	return body, fallbackTitle(body, focus), true
}

// fallbackTitle builds "Discussion on <w1> <w2>" from the first line of body.
func fallbackTitle(body, focus string) string {
	first, _, _ := strings.Cut(body, "\n")
	words := word.FindAllString(first, 2)
	if len(words) == 0 {
		return "Discussion on " + focus
	}
	return "Discussion on " + strings.Join(words, " ")
}
