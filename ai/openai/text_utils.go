package openai

import "strings"

// token returns the bearer token to send. Local OpenAI-compatible services
// don't require authentication but the client insists on a value.
func token(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	return apiKey
}

// cleanReply strips whitespace and markdown code fences some models wrap
// their answers in.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], " ") {
		s = s[nl+1:] // language tag
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
