package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/core"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalDraft(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		draft *core.Draft
	}{
		{
			name: "full draft",
			draft: &core.Draft{
				Id:            7,
				Kind:          core.DraftKindEmail,
				Company:       "Acme",
				Subject:       "Quick idea",
				Body:          "Hi there,\n\nÇa va? 🚀",
				Tone:          "warm",
				Focus:         "Product Insight",
				TemplateId:    3,
				TemplateScore: 0.8731,
				CreatedAt:     now,
			},
		},
		{
			name: "no template",
			draft: &core.Draft{
				Id:            1,
				Kind:          core.DraftKindLinkedIn,
				Body:          "Hello",
				TemplateId:    -1,
				TemplateScore: -1,
				CreatedAt:     now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalDraft(tt.draft)

			decoded, err := UnmarshalDraft(data)
			require.NoError(t, err)
			assert.True(t, tt.draft.CreatedAt.Equal(decoded.CreatedAt))
			decoded.CreatedAt = tt.draft.CreatedAt
			assert.Equal(t, tt.draft, decoded)
		})
	}
}

func TestUnmarshalDraft_Truncated(t *testing.T) {
	data := MarshalDraft(&core.Draft{Id: 1, Kind: core.DraftKindEmail, Body: "body text", CreatedAt: time.Now()})

	for _, cut := range []int{0, 1, 3, len(data) - 1} {
		_, err := UnmarshalDraft(data[:cut])
		assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
	}
}

func TestMarshalUnmarshalVector(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"empty", []float32{}},
		{"unit", []float32{1, 0, 0}},
		{"mixed", []float32{-0.25, 3.5e-8, 123456.78, float32(math.Inf(1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalVector(MarshalVector(tt.vector))
			require.NoError(t, err)
			assert.Equal(t, tt.vector, decoded)
		})
	}
}

func TestUnmarshalVector_Invalid(t *testing.T) {
	_, err := UnmarshalVector(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	data := MarshalVector([]float32{1, 2, 3})
	_, err = UnmarshalVector(data[:2])
	assert.Error(t, err)
}
