package outreach

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/poiesic/coldmail/core"
)

// EmailRequest asks for a template-adapted cold email.
type EmailRequest struct {
	// Company is the scraped profile to write for.
	Company *core.CompanyRecord `validate:"required"`

	// CompanyName overrides Company.CompanyName when set.
	CompanyName string `validate:"required,max=200"`

	Tone              string `validate:"max=200"`
	Focus             string `validate:"max=200"`
	AdditionalContext string `validate:"max=4000"`
}

// LinkedInRequest asks for a short LinkedIn message.
type LinkedInRequest struct {
	Company     *core.CompanyRecord `validate:"required"`
	CompanyName string              `validate:"required,max=200"`

	Tone              string `validate:"max=200"`
	Focus             string `validate:"max=200"`
	AdditionalContext string `validate:"max=4000"`
}

// VariantRequest asks for one draft per variant mode.
type VariantRequest struct {
	CompanyName string `validate:"required,max=200"`

	// Contexts maps a mode focus to the background text for that variant.
	// See VariantContexts.
	Contexts map[string]string

	// CommonalityHint is appended to every prompt, usually the output of
	// Commonalities.
	CommonalityHint string `validate:"max=2000"`
	ExtraContext    string `validate:"max=4000"`

	// Tone and Focus restrict generation to the single matching mode. Both
	// must be set together.
	Tone  string `validate:"required_with=Focus"`
	Focus string `validate:"required_with=Tone"`
}

func (p *Pipeline) validateRequest(req any) error {
	if err := p.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// companyName picks the explicit name, then the record's.
func companyName(explicit string, record *core.CompanyRecord) string {
	if explicit != "" {
		return explicit
	}
	if record != nil {
		return record.CompanyName
	}
	return ""
}
