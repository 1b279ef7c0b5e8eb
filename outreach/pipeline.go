package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/coldmail/ai"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/normalize"
	"github.com/poiesic/coldmail/search"
	"github.com/poiesic/coldmail/storage"
)

// Pipeline generates outreach drafts for companies.
// It is safe for concurrent use.
type Pipeline struct {
	snapshot   *storage.Snapshot
	retriever  *search.Retriever
	generator  ai.Generator
	normalizer *normalize.Normalizer
	history    storage.DraftRepository
	modes      []core.VariantMode
	pool       *ants.Pool
	validate   *validator.Validate
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for variant generation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "outreach")
		return nil
	}
}

// WithHistory records every generated draft in repo.
func WithHistory(repo storage.DraftRepository) Option {
	return func(p *Pipeline) error {
		p.history = repo
		return nil
	}
}

// WithModes replaces the default variant modes.
func WithModes(modes []core.VariantMode) Option {
	return func(p *Pipeline) error {
		if len(modes) == 0 {
			return fmt.Errorf("%w: at least one variant mode is required", ErrInvalidRequest)
		}
		for i := range modes {
			if err := p.validate.Struct(&modes[i]); err != nil {
				return fmt.Errorf("%w: mode %d: %w", ErrInvalidRequest, i, err)
			}
		}
		p.modes = cloneModes(modes)
		return nil
	}
}

// WithNormalizer sets the normalizer applied to company records before
// retrieval. Default is normalize.New().
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) error {
		if n != nil {
			p.normalizer = n
		}
		return nil
	}
}

// WithRetriever sets the retriever used to pick template emails.
// Default embeds queries with the provider's embedder.
func WithRetriever(r *search.Retriever) Option {
	return func(p *Pipeline) error {
		if r != nil {
			p.retriever = r
		}
		return nil
	}
}

// NewPipeline creates a pipeline reading templates from snapshot.
func NewPipeline(snapshot *storage.Snapshot, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if snapshot == nil {
		return nil, ErrSnapshotRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		snapshot:   snapshot,
		generator:  provider.Generator(),
		normalizer: normalize.New(),
		modes:      cloneModes(core.DefaultVariantModes),
		pool:       pool,
		validate:   newValidator(),
		logger:     slog.Default().With("component", "outreach"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.retriever == nil {
		r, err := search.NewRetriever(provider.Embedder(), search.WithLogger(p.logger))
		if err != nil {
			p.Release()
			return nil, err
		}
		p.retriever = r
	}

	return p, nil
}

// Modes returns the configured variant modes.
func (p *Pipeline) Modes() []core.VariantMode {
	return cloneModes(p.modes)
}

// Result is a generated draft together with the template it was adapted from.
type Result struct {
	RequestID string
	Draft     *core.Draft

	// Template is nil for drafts not based on a retrieved template.
	Template *core.Match
}

// GenerateEmail adapts the template most similar to the company profile.
func (p *Pipeline) GenerateEmail(ctx context.Context, req EmailRequest) (*Result, error) {
	req.CompanyName = companyName(req.CompanyName, req.Company)
	if err := p.validateRequest(&req); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "company", req.CompanyName)

	info := p.normalizer.Normalize(req.Company)
	match, err := p.retrieve(ctx, info)
	if err != nil {
		logger.Error("template retrieval failed", "err", err)
		return nil, err
	}
	logger.Debug("template selected", "template_id", match.Entry.Id, "score", match.Score)

	reply, err := p.generate(ctx, adaptSystemPrompt,
		adaptPrompt(req.CompanyName, info, match.Entry.Email, req.Tone, req.Focus, req.AdditionalContext))
	if err != nil {
		logger.Error("email generation failed", "err", err)
		return nil, err
	}

	subject, body := splitAdapted(reply)
	draft := &core.Draft{
		Kind:          core.DraftKindEmail,
		Company:       req.CompanyName,
		Subject:       subject,
		Body:          body,
		Tone:          req.Tone,
		Focus:         req.Focus,
		TemplateId:    match.Entry.Id,
		TemplateScore: match.Score,
	}

	return &Result{RequestID: requestID, Draft: p.record(ctx, logger, draft), Template: match}, nil
}

// GenerateLinkedInMessage writes a short LinkedIn message for the company.
func (p *Pipeline) GenerateLinkedInMessage(ctx context.Context, req LinkedInRequest) (*Result, error) {
	req.CompanyName = companyName(req.CompanyName, req.Company)
	if err := p.validateRequest(&req); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "company", req.CompanyName)

	reply, err := p.generate(ctx, "",
		linkedInMessagePrompt(req.CompanyName, linkedInInfo(req.Company), req.Tone, req.Focus, req.AdditionalContext))
	if err != nil {
		logger.Error("LinkedIn message generation failed", "err", err)
		return nil, err
	}

	draft := &core.Draft{
		Kind:       core.DraftKindLinkedIn,
		Company:    req.CompanyName,
		Body:       strings.TrimSpace(reply),
		Tone:       req.Tone,
		Focus:      req.Focus,
		TemplateId: -1,
	}

	return &Result{RequestID: requestID, Draft: p.record(ctx, logger, draft)}, nil
}

// GenerateVariants writes one draft per mode concurrently. Results follow
// mode order. A failed variant carries its error in Variant.Err and does not
// affect the others; the returned error is reserved for invalid requests.
func (p *Pipeline) GenerateVariants(ctx context.Context, req VariantRequest) ([]core.Variant, error) {
	if err := p.validateRequest(&req); err != nil {
		return nil, err
	}

	modes := p.modes
	if req.Tone != "" {
		mode, err := FindMode(p.modes, req.Tone, req.Focus)
		if err != nil {
			return nil, err
		}
		modes = []core.VariantMode{mode}
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "company", req.CompanyName)
	logger.Info("generating variants", "modes", len(modes))
	start := time.Now()

	variants := make([]core.Variant, len(modes))
	var wg sync.WaitGroup
	for i, mode := range modes {
		variants[i].Mode = mode
		prompt := variantModePrompt(req.CompanyName, mode, req.Contexts[mode.Focus], req.CommonalityHint, req.ExtraContext)

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.generateVariant(ctx, &variants[i], prompt)
		})
		if err != nil {
			wg.Done()
			variants[i].Err = fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
	}
	wg.Wait()

	drafts := make([]*core.Draft, 0, len(variants))
	failed := 0
	for _, v := range variants {
		if v.Err != nil {
			failed++
			logger.Warn("variant failed", "focus", v.Mode.Focus, "tone", v.Mode.Tone, "err", v.Err)
			continue
		}
		drafts = append(drafts, &core.Draft{
			Kind:       core.DraftKindVariant,
			Company:    req.CompanyName,
			Subject:    v.Title,
			Body:       v.Email,
			Tone:       v.Mode.Tone,
			Focus:      v.Mode.Focus,
			TemplateId: -1,
		})
	}
	p.record(ctx, logger, drafts...)

	logger.Info("variants generated", "ok", len(variants)-failed, "failed", failed, "elapsed", time.Since(start))
	return variants, nil
}

func (p *Pipeline) generateVariant(ctx context.Context, v *core.Variant, prompt string) {
	reply, err := p.generate(ctx, "", prompt)
	if err != nil {
		v.Err = err
		return
	}
	body, title, ok := parseVariant(reply, v.Mode.Focus)
	if !ok {
		v.Err = ErrUnparsableReply
		return
	}
	v.Email = body
	v.Title = title
}

// MergeVariants combines successful variants into one email in the given tone.
func (p *Pipeline) MergeVariants(ctx context.Context, company string, variants []core.Variant, tone string) (*Result, error) {
	usable := make([]core.Variant, 0, len(variants))
	for _, v := range variants {
		if v.Err == nil && v.Email != "" {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoVariants
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "company", company)

	reply, err := p.generate(ctx, "", mergeVariantsPrompt(usable, orDefault(tone, "professional")))
	if err != nil {
		logger.Error("merge failed", "err", err)
		return nil, err
	}

	draft := &core.Draft{
		Kind:       core.DraftKindMerged,
		Company:    company,
		Body:       strings.TrimSpace(reply),
		Tone:       tone,
		TemplateId: -1,
	}
	return &Result{RequestID: requestID, Draft: p.record(ctx, logger, draft)}, nil
}

// Revise rewrites draft to address feedback. An empty draft body or empty
// feedback returns the draft unchanged without calling the generator.
func (p *Pipeline) Revise(ctx context.Context, draft *core.Draft, feedback string) (*Result, error) {
	if draft == nil || strings.TrimSpace(draft.Body) == "" || strings.TrimSpace(feedback) == "" {
		return &Result{Draft: draft}, nil
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID, "company", draft.Company)

	reply, err := p.generate(ctx, "", revisionPrompt(draft.Body, feedback))
	if err != nil {
		logger.Error("revision failed", "err", err)
		return nil, err
	}

	revised := &core.Draft{
		Kind:          core.DraftKindRevision,
		Company:       draft.Company,
		Subject:       draft.Subject,
		Body:          strings.TrimSpace(reply),
		Tone:          draft.Tone,
		Focus:         draft.Focus,
		TemplateId:    draft.TemplateId,
		TemplateScore: draft.TemplateScore,
	}
	return &Result{RequestID: requestID, Draft: p.record(ctx, logger, revised)}, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) retrieve(ctx context.Context, query string) (*core.Match, error) {
	store, err := p.snapshot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	match, err := p.retriever.BestMatchInStore(ctx, query, store)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	return match, nil
}

func (p *Pipeline) generate(ctx context.Context, system, prompt string) (string, error) {
	reply, err := p.generator.Generate(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrGenerationFailed)
	}
	return reply, nil
}

// record stores drafts in history when configured and returns the first
// draft, with its id populated when recording succeeded. History failures
// are logged; the generated text is still returned.
func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, drafts ...*core.Draft) *core.Draft {
	if len(drafts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, d := range drafts {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
	}
	if p.history == nil {
		return drafts[0]
	}

	added, err := p.history.AddDrafts(ctx, drafts...)
	if err != nil {
		logger.Warn("failed to record draft history", "err", err)
		return drafts[0]
	}
	return added[0]
}

func cloneModes(modes []core.VariantMode) []core.VariantMode {
	return append([]core.VariantMode(nil), modes...)
}
