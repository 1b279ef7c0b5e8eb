package outreach

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/ai/mock"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/normalize"
	"github.com/poiesic/coldmail/storage"
	"github.com/poiesic/coldmail/storage/badger"
)

func acmeRecord() *core.CompanyRecord {
	return &core.CompanyRecord{
		CompanyName:        "Acme Robotics",
		Description:        "Acme builds warehouse robots.",
		CompanyOverview:    "Founded in 2019, Acme automates picking.",
		IndustryCategories: []string{"Robotics", "Logistics"},
		WebsiteSummary:     "Robots that pick, pack and ship.",
		NewsSummary:        "Acme raised a Series B.",
	}
}

// testStore returns a store whose second entry embeds exactly like record.
func testStore(t *testing.T, embedder *mock.MockEmbedder, record *core.CompanyRecord) *core.TemplateStore {
	t.Helper()
	ctx := context.Background()

	other, err := embedder.EmbedText(ctx, "an unrelated fintech company")
	require.NoError(t, err)
	same, err := embedder.EmbedText(ctx, normalize.Normalize(record))
	require.NoError(t, err)
	embedder.Reset()

	return &core.TemplateStore{
		Model:     embedder.Model(),
		Dimension: len(same),
		Entries: []core.TemplateEntry{
			{Id: 0, Email: "Template about payments", Embedding: other},
			{Id: 1, Email: "Template about robots", Embedding: same},
		},
	}
}

type fixture struct {
	pipeline  *Pipeline
	embedder  *mock.MockEmbedder
	generator *mock.MockGenerator
	repos     *badger.Repositories
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	generator := mock.NewMockGenerator()
	store := testStore(t, embedder, acmeRecord())

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	opts = append([]Option{WithHistory(repos.Drafts), WithPoolSize(4)}, opts...)
	p, err := NewPipeline(storage.NewStaticSnapshot(store),
		mock.NewMockProviderWithServices(embedder, generator), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return &fixture{pipeline: p, embedder: embedder, generator: generator, repos: repos}
}

func TestNewPipeline(t *testing.T) {
	provider := mock.NewMockProvider()
	snapshot := storage.NewStaticSnapshot(&core.TemplateStore{})

	t.Run("requires snapshot", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.ErrorIs(t, err, ErrSnapshotRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewPipeline(snapshot, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("defaults to seven modes", func(t *testing.T) {
		p, err := NewPipeline(snapshot, provider)
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, core.DefaultVariantModes, p.Modes())
	})

	t.Run("rejects invalid modes", func(t *testing.T) {
		_, err := NewPipeline(snapshot, provider, WithModes([]core.VariantMode{{Focus: "x"}}))
		assert.ErrorIs(t, err, ErrInvalidRequest)

		_, err = NewPipeline(snapshot, provider, WithModes(nil))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestGenerateEmail(t *testing.T) {
	f := newFixture(t)
	f.generator.Reply = "Here is the adapted email:\nSubject: Robots at [Your Company] scale\n\nHi Acme,\n\nWould you be up for a conversation next week?"

	result, err := f.pipeline.GenerateEmail(context.Background(), EmailRequest{
		Company: acmeRecord(),
		Tone:    "warm",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Template)
	assert.Equal(t, 1, result.Template.Entry.Id)
	assert.InDelta(t, 1.0, result.Template.Score, 1e-6)
	assert.NotEmpty(t, result.RequestID)

	draft := result.Draft
	assert.Equal(t, "Robots at scale", draft.Subject)
	assert.Equal(t, "Hi Acme,\n\nWould you be up for a conversation next week?", draft.Body)
	assert.Equal(t, "Acme Robotics", draft.Company)
	assert.Equal(t, core.DraftKindEmail, draft.Kind)
	assert.Equal(t, 1, draft.TemplateId)
	assert.NotZero(t, draft.Id)

	calls := f.generator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, adaptSystemPrompt, calls[0].System)
	assert.Contains(t, calls[0].Prompt, "Template about robots")
	assert.Contains(t, calls[0].Prompt, "- Tone: warm")
	assert.Contains(t, calls[0].Prompt, "- Focus: As per template")
	assert.Contains(t, calls[0].Prompt, normalize.Normalize(acmeRecord()))

	stored, err := f.repos.Drafts.GetDraft(context.Background(), draft.Id)
	require.NoError(t, err)
	assert.Equal(t, draft.Body, stored.Body)
}

func TestGenerateEmail_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.GenerateEmail(context.Background(), EmailRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.pipeline.GenerateEmail(context.Background(), EmailRequest{Company: &core.CompanyRecord{}})
	assert.ErrorIs(t, err, ErrInvalidRequest, "company name is required")

	assert.Zero(t, f.generator.CallCount())
}

func TestGenerateEmail_RetrievalAndGenerationErrorsAreDistinct(t *testing.T) {
	t.Run("embedder down", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("connection refused")
		}

		_, err := f.pipeline.GenerateEmail(context.Background(), EmailRequest{Company: acmeRecord()})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, core.ErrEmbedderUnavailable)
		assert.NotErrorIs(t, err, ErrGenerationFailed)
		assert.Zero(t, f.generator.CallCount())
	})

	t.Run("empty store", func(t *testing.T) {
		p, err := NewPipeline(storage.NewStaticSnapshot(&core.TemplateStore{}), mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		_, err = p.GenerateEmail(context.Background(), EmailRequest{Company: acmeRecord()})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("model mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.ModelName = "other-model"

		_, err := f.pipeline.GenerateEmail(context.Background(), EmailRequest{Company: acmeRecord()})
		assert.ErrorIs(t, err, core.ErrModelMismatch)
	})

	t.Run("generator down", func(t *testing.T) {
		f := newFixture(t)
		f.generator.GenerateFunc = func(context.Context, string, string) (string, error) {
			return "", errors.New("rate limited")
		}

		_, err := f.pipeline.GenerateEmail(context.Background(), EmailRequest{Company: acmeRecord()})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.NotErrorIs(t, err, ErrRetrievalFailed)
	})
}

func TestGenerateLinkedInMessage(t *testing.T) {
	f := newFixture(t)
	f.generator.Reply = "  Noted the Series B. How will you scale picking? Open to a chat?  "

	result, err := f.pipeline.GenerateLinkedInMessage(context.Background(), LinkedInRequest{
		Company: acmeRecord(),
		Focus:   "Strategy",
	})
	require.NoError(t, err)

	assert.Equal(t, "Noted the Series B. How will you scale picking? Open to a chat?", result.Draft.Body)
	assert.Equal(t, core.DraftKindLinkedIn, result.Draft.Kind)
	assert.Nil(t, result.Template)
	assert.Zero(t, f.embedder.CallCount(), "LinkedIn messages do not retrieve templates")

	prompt := f.generator.Calls()[0].Prompt
	assert.Contains(t, prompt, "Robots that pick, pack and ship.\n\nRecent News Highlight: Acme raised a Series B....")
	assert.Contains(t, prompt, "- Focus: Strategy")
	assert.NotContains(t, prompt, "- Tone:")
}

func TestGenerateVariants(t *testing.T) {
	f := newFixture(t)
	f.generator.GenerateFunc = func(_ context.Context, _, prompt string) (string, error) {
		for _, m := range core.DefaultVariantModes {
			if strings.Contains(prompt, "Focus: "+m.Focus+"\n") {
				return "Email: A note on " + m.Focus + ".\n\nTitle: Discussion on " + m.Tone, nil
			}
		}
		return "", errors.New("unknown focus")
	}

	variants, err := f.pipeline.GenerateVariants(context.Background(), VariantRequest{
		CompanyName: "Acme Robotics",
		Contexts:    map[string]string{"Product Insight": "homepage text"},
	})
	require.NoError(t, err)
	require.Len(t, variants, len(core.DefaultVariantModes))

	for i, v := range variants {
		require.NoError(t, v.Err)
		assert.Equal(t, core.DefaultVariantModes[i], v.Mode, "results follow mode order")
		assert.Equal(t, "A note on "+v.Mode.Focus+".", v.Email)
		assert.Equal(t, "Discussion on "+v.Mode.Tone, v.Title)
	}

	var sawContext bool
	for _, c := range f.generator.Calls() {
		if strings.Contains(c.Prompt, "homepage text") {
			sawContext = true
			assert.Contains(t, c.Prompt, "Focus: Product Insight")
		}
	}
	assert.True(t, sawContext)

	recent, err := f.repos.Drafts.GetRecentDrafts(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, recent, len(core.DefaultVariantModes))
}

func TestGenerateVariants_PartialFailure(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int32
	f.generator.GenerateFunc = func(_ context.Context, _, prompt string) (string, error) {
		calls.Add(1)
		if strings.Contains(prompt, "Focus: Market Perspective") {
			return "", errors.New("timeout")
		}
		if strings.Contains(prompt, "Focus: Strategic Fit") {
			return "Title: Discussion on nothing", nil
		}
		return "Email: Fine.", nil
	}

	variants, err := f.pipeline.GenerateVariants(context.Background(), VariantRequest{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int32(7), calls.Load())

	for _, v := range variants {
		switch v.Mode.Focus {
		case "Market Perspective":
			assert.ErrorIs(t, v.Err, ErrGenerationFailed)
		case "Strategic Fit":
			assert.ErrorIs(t, v.Err, ErrUnparsableReply)
		default:
			assert.NoError(t, v.Err)
			assert.Equal(t, "Fine.", v.Email)
			assert.Equal(t, "Discussion on Fine", v.Title)
		}
	}
}

func TestGenerateVariants_SingleMode(t *testing.T) {
	f := newFixture(t)
	f.generator.Reply = "Email: Short note.\nTitle: Discussion on robots and scale"

	variants, err := f.pipeline.GenerateVariants(context.Background(), VariantRequest{
		CompanyName: "Acme",
		Tone:        "curious",
		Focus:       "Curious Analyst",
	})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "Curious Analyst", variants[0].Mode.Focus)
	assert.Equal(t, "Discussion on robots and scale", variants[0].Title)
	assert.Equal(t, 1, f.generator.CallCount())

	_, err = f.pipeline.GenerateVariants(context.Background(), VariantRequest{
		CompanyName: "Acme",
		Tone:        "curious",
		Focus:       "Product Insight",
	})
	assert.ErrorIs(t, err, ErrUnsupportedMode)

	_, err = f.pipeline.GenerateVariants(context.Background(), VariantRequest{
		CompanyName: "Acme",
		Tone:        "curious",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest, "tone without focus")
}

func TestGenerateVariants_CustomModes(t *testing.T) {
	modes := []core.VariantMode{{Focus: "Pricing", Tone: "blunt", Style: "Short."}}
	f := newFixture(t, WithModes(modes))
	f.generator.Reply = "Email: Price check."

	variants, err := f.pipeline.GenerateVariants(context.Background(), VariantRequest{CompanyName: "Acme"})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, modes[0], variants[0].Mode)
	assert.Contains(t, f.generator.Calls()[0].Prompt, "Persona: Blunt")
}

func TestMergeVariants(t *testing.T) {
	f := newFixture(t)
	f.generator.Reply = "Merged email."

	variants := []core.Variant{
		{Mode: core.DefaultVariantModes[0], Email: "First."},
		{Mode: core.DefaultVariantModes[1], Err: errors.New("failed")},
		{Mode: core.DefaultVariantModes[2], Email: "Third."},
	}

	result, err := f.pipeline.MergeVariants(context.Background(), "Acme", variants, "warm")
	require.NoError(t, err)
	assert.Equal(t, "Merged email.", result.Draft.Body)
	assert.Equal(t, core.DraftKindMerged, result.Draft.Kind)

	prompt := f.generator.Calls()[0].Prompt
	assert.Contains(t, prompt, "[Variant 1 - Focus: Product Insight] First.")
	assert.Contains(t, prompt, "[Variant 2 - Focus: Market Perspective] Third.")
	assert.Contains(t, prompt, "Maintain a warm tone.")

	_, err = f.pipeline.MergeVariants(context.Background(), "Acme", variants[1:2], "warm")
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestRevise(t *testing.T) {
	f := newFixture(t)
	f.generator.Reply = "Shorter email."
	original := &core.Draft{Kind: core.DraftKindEmail, Company: "Acme", Subject: "Hi", Body: "Long email.", TemplateId: 3}

	t.Run("revises with feedback", func(t *testing.T) {
		result, err := f.pipeline.Revise(context.Background(), original, "make it shorter")
		require.NoError(t, err)
		assert.Equal(t, "Shorter email.", result.Draft.Body)
		assert.Equal(t, core.DraftKindRevision, result.Draft.Kind)
		assert.Equal(t, "Hi", result.Draft.Subject)
		assert.Equal(t, 3, result.Draft.TemplateId)
		assert.Contains(t, f.generator.Calls()[0].Prompt, `"""make it shorter"""`)
	})

	t.Run("empty feedback returns original", func(t *testing.T) {
		f.generator.Reset()
		result, err := f.pipeline.Revise(context.Background(), original, "  ")
		require.NoError(t, err)
		assert.Same(t, original, result.Draft)
		assert.Zero(t, f.generator.CallCount())
	})

	t.Run("empty draft returns original", func(t *testing.T) {
		empty := &core.Draft{}
		result, err := f.pipeline.Revise(context.Background(), empty, "feedback")
		require.NoError(t, err)
		assert.Same(t, empty, result.Draft)
	})
}

func TestPipeline_WithoutHistory(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := testStore(t, embedder, acmeRecord())
	p, err := NewPipeline(storage.NewStaticSnapshot(store),
		mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator()))
	require.NoError(t, err)
	defer p.Release()

	result, err := p.GenerateEmail(context.Background(), EmailRequest{Company: acmeRecord()})
	require.NoError(t, err)
	assert.Zero(t, result.Draft.Id)
	assert.False(t, result.Draft.CreatedAt.IsZero())
	assert.Equal(t, "Quick idea for your team", result.Draft.Subject)
}
