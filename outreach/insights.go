package outreach

import "strings"

// Source types produced by the scrapers.
const (
	SourceWebsiteHomepage  = "website_homepage"
	SourceWebsiteBlog      = "website_blog"
	SourceWebsiteNews      = "website_news"
	SourceWebsiteAbout     = "website_about"
	SourceWebsiteTeam      = "website_team"
	SourceWebsiteInsights  = "website_insights"
	SourceLinkedInAbout    = "linkedin_about"
	SourceLinkedInArticles = "linkedin_articles"
)

// focusSources lists, per variant focus, the source types feeding its context.
// Founder Commonality gets its context from the commonality hint instead.
var focusSources = map[string][]string{
	"Product Insight":       {SourceWebsiteHomepage, SourceWebsiteBlog, SourceWebsiteNews},
	"Team & Talent Fit":     {SourceLinkedInAbout, SourceWebsiteAbout, SourceWebsiteTeam},
	"Market Perspective":    {SourceLinkedInArticles, SourceWebsiteBlog, SourceWebsiteInsights},
	"Founder Commonality":   nil,
	"Strategic Fit":         {SourceWebsiteAbout, SourceWebsiteHomepage},
	"Curious Analyst":       {SourceWebsiteBlog, SourceLinkedInArticles},
	"Relational & Friendly": {SourceLinkedInArticles, SourceLinkedInAbout},
}

// ScrapedSource is one piece of scraped text tagged with where it came from.
type ScrapedSource struct {
	Type string `json:"source_type"`
	Text string `json:"text"`
}

// GroupSources groups texts by source type, preserving order.
func GroupSources(sources []ScrapedSource) map[string][]string {
	grouped := make(map[string][]string)
	for _, s := range sources {
		grouped[s.Type] = append(grouped[s.Type], s.Text)
	}
	return grouped
}

// VariantContexts maps grouped source texts onto the default variant focuses.
// Every default focus is present in the result, possibly with an empty context.
func VariantContexts(grouped map[string][]string) map[string]string {
	contexts := make(map[string]string, len(focusSources))
	for focus, keys := range focusSources {
		var texts []string
		for _, key := range keys {
			texts = append(texts, grouped[key]...)
		}
		contexts[focus] = strings.Join(texts, "\n\n")
	}
	return contexts
}
