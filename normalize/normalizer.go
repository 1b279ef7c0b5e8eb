package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/coldmail/core"
)

// NewsSource names one way of rendering the news section.
type NewsSource string

const (
	// NewsItems renders structured news entries one per line.
	NewsItems NewsSource = "items"
	// NewsSummary renders the separate news_summary field.
	NewsSummary NewsSource = "summary"
	// NewsText renders news when it was stored as a plain string.
	NewsText NewsSource = "text"
)

const (
	sectionSeparator = "\n\n"

	// DefaultTruncate bounds plain news text in runes.
	DefaultTruncate = 300
)

// Policy controls the optional parts of normalization.
type Policy struct {
	// NewsPriority is tried in order; the first applicable source wins.
	NewsPriority []NewsSource
	// Truncate bounds summary and text news in runes. 0 disables truncation.
	Truncate int
	// IncludeFounders appends a founder biography section.
	IncludeFounders bool
}

// DefaultPolicy returns the policy used by Normalize.
func DefaultPolicy() Policy {
	return Policy{
		NewsPriority: []NewsSource{NewsItems, NewsSummary, NewsText},
		Truncate:     DefaultTruncate,
	}
}

// ParseNewsSource converts a configuration string into a NewsSource.
func ParseNewsSource(s string) (NewsSource, error) {
	switch src := NewsSource(strings.ToLower(strings.TrimSpace(s))); src {
	case NewsItems, NewsSummary, NewsText:
		return src, nil
	default:
		return "", fmt.Errorf("unknown news source %q", s)
	}
}

// Normalizer builds query text from company records. It is stateless and safe
// for concurrent use.
type Normalizer struct {
	policy Policy
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithNewsPriority overrides the order in which news sources are tried.
func WithNewsPriority(sources ...NewsSource) Option {
	return func(n *Normalizer) {
		n.policy.NewsPriority = append([]NewsSource(nil), sources...)
	}
}

// WithTruncate sets the rune bound for plain news text.
func WithTruncate(runes int) Option {
	return func(n *Normalizer) {
		if runes >= 0 {
			n.policy.Truncate = runes
		}
	}
}

// WithFounders enables the founder section.
func WithFounders(enabled bool) Option {
	return func(n *Normalizer) {
		n.policy.IncludeFounders = enabled
	}
}

// New creates a Normalizer starting from DefaultPolicy.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Policy returns a copy of the normalizer's policy.
func (n *Normalizer) Policy() Policy {
	p := n.policy
	p.NewsPriority = append([]NewsSource(nil), n.policy.NewsPriority...)
	return p
}

var defaultNormalizer = New()

// Normalize renders record with the default policy.
func Normalize(record *core.CompanyRecord) string {
	return defaultNormalizer.Normalize(record)
}

// Normalize renders record as query text. A nil record is treated as empty.
func (n *Normalizer) Normalize(record *core.CompanyRecord) string {
	if record == nil {
		record = &core.CompanyRecord{}
	}

	sections := []string{
		record.Description,
		record.CompanyOverview,
		"Industries: " + strings.Join(record.IndustryCategories, ", "),
		"Website Summary: " + record.WebsiteSummary,
		n.news(record),
	}
	if n.policy.IncludeFounders {
		sections = append(sections, founders(record.FounderInfo))
	}

	return strings.Join(sections, sectionSeparator)
}

func (n *Normalizer) news(record *core.CompanyRecord) string {
	for _, src := range n.policy.NewsPriority {
		switch src {
		case NewsItems:
			if record.News.IsStructured() {
				return renderItems(record.News.Items)
			}
		case NewsSummary:
			if record.NewsSummary != "" {
				return "Recent News: " + truncate(record.NewsSummary, n.policy.Truncate)
			}
		case NewsText:
			if !record.News.IsStructured() && record.News.Text != "" {
				return "Recent News: " + truncate(record.News.Text, n.policy.Truncate)
			}
		}
	}
	return renderItems(nil)
}

func renderItems(items []core.NewsItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s — %s: %s", item.When(), item.Title, item.Summary))
	}
	return "Recent News:\n" + strings.Join(lines, "\n")
}

func founders(info map[string]core.Founder) string {
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+info[name].WikipediaSummary)
	}
	return "Founders:\n" + strings.Join(lines, "\n")
}

// truncate keeps at most limit runes of s.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
