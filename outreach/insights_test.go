package outreach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/core"
)

func TestVariantContexts(t *testing.T) {
	grouped := GroupSources([]ScrapedSource{
		{Type: SourceWebsiteHomepage, Text: "home"},
		{Type: SourceWebsiteBlog, Text: "blog one"},
		{Type: SourceWebsiteBlog, Text: "blog two"},
		{Type: SourceLinkedInAbout, Text: "about us"},
		{Type: "unknown", Text: "ignored"},
	})

	contexts := VariantContexts(grouped)

	for _, mode := range core.DefaultVariantModes {
		_, ok := contexts[mode.Focus]
		assert.True(t, ok, "missing focus %q", mode.Focus)
	}
	assert.Equal(t, "home\n\nblog one\n\nblog two", contexts["Product Insight"])
	assert.Equal(t, "about us", contexts["Team & Talent Fit"])
	assert.Equal(t, "blog one\n\nblog two", contexts["Curious Analyst"])
	assert.Equal(t, "home", contexts["Strategic Fit"])
	assert.Empty(t, contexts["Founder Commonality"])
}

func TestFindMode(t *testing.T) {
	mode, err := FindMode(core.DefaultVariantModes, "analyst", "Market Perspective")
	require.NoError(t, err)
	assert.Equal(t, "Inquisitive, data-driven, and strategic.", mode.Style)

	_, err = FindMode(core.DefaultVariantModes, "warm", "Market Perspective")
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}
