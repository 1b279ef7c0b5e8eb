package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CompanyRecord is the scraped profile of a target company. Every field is
// optional; later enrichment stages fill in more of them.
type CompanyRecord struct {
	CompanyName        string             `json:"company_name,omitempty"`
	Description        string             `json:"description,omitempty"`
	CompanyOverview    string             `json:"company_overview,omitempty"`
	IndustryCategories []string           `json:"industry_categories,omitempty"`
	WebsiteSummary     string             `json:"website_summary,omitempty"`
	News               News               `json:"news,omitempty"`
	NewsSummary        string             `json:"news_summary,omitempty"`
	FounderInfo        map[string]Founder `json:"founder_info,omitempty"`
}

// Founder holds biography data gathered for one founder.
type Founder struct {
	WikipediaSummary string `json:"wikipedia_summary,omitempty"`
}

// NewsItem is one structured news entry.
type NewsItem struct {
	NewsDate string `json:"news_date,omitempty"`
	Date     string `json:"date,omitempty"`
	Title    string `json:"title,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// When returns the item's date, preferring news_date.
func (n NewsItem) When() string {
	if n.NewsDate != "" {
		return n.NewsDate
	}
	return n.Date
}

// News is either a plain pre-summarized string or a list of structured items.
type News struct {
	Text  string
	Items []NewsItem
}

// IsStructured reports whether the news was given as items.
func (n News) IsStructured() bool {
	return len(n.Items) > 0
}

// IsZero reports whether no news is present.
func (n News) IsZero() bool {
	return n.Text == "" && len(n.Items) == 0
}

// UnmarshalJSON accepts a string, an array of items, or null.
func (n *News) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = News{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &n.Text)
	case '[':
		var raw []struct {
			NewsDate *string `json:"news_date"`
			Date     *string `json:"date"`
			Title    *string `json:"title"`
			Summary  *string `json:"summary"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		n.Items = make([]NewsItem, 0, len(raw))
		for _, r := range raw {
			n.Items = append(n.Items, NewsItem{
				NewsDate: deref(r.NewsDate),
				Date:     deref(r.Date),
				Title:    deref(r.Title),
				Summary:  deref(r.Summary),
			})
		}
		return nil
	default:
		return fmt.Errorf("news: expected string or array, got %q", data[:1])
	}
}

// MarshalJSON writes the string form or the item list.
func (n News) MarshalJSON() ([]byte, error) {
	if n.IsStructured() {
		return json.Marshal(n.Items)
	}
	if n.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.Text)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Slug converts a company name into the lowercase, dash separated key used by
// scraped data files.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// LookupCompany decodes a company data file. The file is either a single
// record or a map from slug to record. When name is empty the single-record
// form is required.
func LookupCompany(data []byte, name string) (*CompanyRecord, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: company data is not a JSON object: %w", ErrInvalidCompanyRecord, err)
	}

	if name != "" {
		if raw, ok := probe[Slug(name)]; ok {
			var record CompanyRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCompanyRecord, err)
			}
			if record.CompanyName == "" {
				record.CompanyName = name
			}
			return &record, nil
		}
	}

	if _, ok := probe["company_name"]; !ok && name == "" {
		return nil, fmt.Errorf("%w: no company name given and data has no top-level company_name", ErrInvalidCompanyRecord)
	}

	var record CompanyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCompanyRecord, err)
	}
	if name != "" && record.CompanyName != "" && Slug(record.CompanyName) != Slug(name) {
		return nil, fmt.Errorf("%w: company %q not found", ErrNotFound, name)
	}
	if record.CompanyName == "" {
		record.CompanyName = name
	}
	return &record, nil
}
