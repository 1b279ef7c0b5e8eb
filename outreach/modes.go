package outreach

import (
	"fmt"

	"github.com/poiesic/coldmail/core"
)

// FindMode returns the mode with exactly the given tone and focus.
func FindMode(modes []core.VariantMode, tone, focus string) (core.VariantMode, error) {
	for _, m := range modes {
		if m.Tone == tone && m.Focus == focus {
			return m, nil
		}
	}
	return core.VariantMode{}, fmt.Errorf("%w: tone %q, focus %q", ErrUnsupportedMode, tone, focus)
}
