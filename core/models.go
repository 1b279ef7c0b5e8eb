package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the identifier type for drafts and cached vectors.
type ID uint64

// IDFromContent derives a stable 64-bit ID from text content.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TemplateEntry is one template email with its precomputed embedding.
type TemplateEntry struct {
	Id        int       `json:"id"`
	Email     string    `json:"email"`
	Embedding []float32 `json:"embedding"`
}

// TemplateStore is an immutable snapshot of the template corpus.
// Model and Dimension are empty for stores persisted in the legacy bare-array format.
type TemplateStore struct {
	Model     string          `json:"model,omitempty"`
	Dimension int             `json:"dimension,omitempty"`
	Entries   []TemplateEntry `json:"entries"`
}

// Len returns the number of entries in the store.
func (s *TemplateStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Match is the outcome of a similarity search.
type Match struct {
	Entry TemplateEntry
	Index int     // Position of Entry in store order
	Score float64 // Cosine similarity; -1 when undefined (zero-norm vector)
}

// DraftKind identifies what produced a Draft.
type DraftKind int

const (
	DraftKindEmail DraftKind = iota + 1
	DraftKindLinkedIn
	DraftKindVariant
	DraftKindMerged
	DraftKindRevision
)

func (k DraftKind) String() string {
	switch k {
	case DraftKindEmail:
		return "email"
	case DraftKindLinkedIn:
		return "linkedin"
	case DraftKindVariant:
		return "variant"
	case DraftKindMerged:
		return "merged"
	case DraftKindRevision:
		return "revision"
	default:
		return "unknown"
	}
}

// Draft is a generated outreach artifact kept in history.
type Draft struct {
	Id            ID
	Kind          DraftKind
	Company       string
	Subject       string
	Body          string
	Tone          string
	Focus         string
	TemplateId    int     // -1 when no template was used
	TemplateScore float64 // Similarity of the template used, if any
	CreatedAt     time.Time
}

// VariantMode is a tone/focus preset for variant generation.
type VariantMode struct {
	Focus string `yaml:"focus" json:"focus" validate:"required"`
	Tone  string `yaml:"tone" json:"tone" validate:"required"`
	Style string `yaml:"style" json:"style"`
}

// DefaultVariantModes are the stock presets.
var DefaultVariantModes = []VariantMode{
	{Focus: "Product Insight", Tone: "direct", Style: "Crisp and pragmatic, focused on product innovation."},
	{Focus: "Team & Talent Fit", Tone: "warm", Style: "Founder-to-founder tone, thoughtful and people-centric."},
	{Focus: "Market Perspective", Tone: "analyst", Style: "Inquisitive, data-driven, and strategic."},
	{Focus: "Founder Commonality", Tone: "relational", Style: "Shared values and background with personalization."},
	{Focus: "Strategic Fit", Tone: "investor", Style: "Decisive and ROI-focused, highlighting synergy."},
	{Focus: "Curious Analyst", Tone: "curious", Style: "Open-ended questions from a junior analyst."},
	{Focus: "Relational & Friendly", Tone: "warm", Style: "Human and empathetic tone with a collaborative spirit."},
}

// Variant is one generated email variant. Err is set when generation failed
// for this mode only.
type Variant struct {
	Mode  VariantMode
	Email string
	Title string
	Err   error
}

// Grade is a heuristic quality score for a draft.
type Grade struct {
	Grade       int    `json:"grade"`
	Uniqueness  int    `json:"uniqueness"`
	Flow        int    `json:"flow"`
	Style       int    `json:"style"`
	Diagnostics string `json:"diagnostics"`
}
