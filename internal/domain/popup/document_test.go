package popup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOfferAppliesFallbacks(t *testing.T) {
	o := DecodeOffer(Document{ID: "a", Fields: map[string]interface{}{
		"title":    "",
		"isActive": true,
	}})

	assert.Equal(t, "a", o.ID)
	assert.Equal(t, DefaultTitle, o.Title)
	assert.Equal(t, DefaultDescription, o.Description)
	assert.Equal(t, DefaultButtonText, o.ButtonText)
	assert.Equal(t, DefaultActionURL, o.ActionURL)
	assert.Equal(t, DefaultImage, o.Image)
	assert.Equal(t, DefaultDiscountPercent, o.DiscountPercent)
	assert.False(t, o.HasCode())
	assert.True(t, o.IsActive)
}

func TestDecodeOfferOnlyBooleanTrueIsActive(t *testing.T) {
	for _, v := range []interface{}{"true", 1, nil, false} {
		o := DecodeOffer(Document{ID: "x", Fields: map[string]interface{}{"isActive": v}})
		assert.False(t, o.IsActive, "value %#v", v)
	}
}

func TestDecodeOfferNumericKinds(t *testing.T) {
	cases := []interface{}{int64(35), 35, float64(35), json.Number("35")}
	for _, v := range cases {
		o := DecodeOffer(Document{Fields: map[string]interface{}{"discountPercent": v}})
		assert.Equal(t, 35.0, o.DiscountPercent, "value %#v", v)
	}
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name   string
		doc    *Document
		expect int
	}{
		{"absent document", nil, DefaultDuration},
		{"missing field", &Document{Fields: map[string]interface{}{}}, DefaultDuration},
		{"float from json", &Document{Fields: map[string]interface{}{"duration": float64(12)}}, 12},
		{"int64 from firestore", &Document{Fields: map[string]interface{}{"duration": int64(30)}}, 30},
		{"zero", &Document{Fields: map[string]interface{}{"duration": 0}}, DefaultDuration},
		{"negative", &Document{Fields: map[string]interface{}{"duration": -4}}, DefaultDuration},
		{"fractional", &Document{Fields: map[string]interface{}{"duration": 2.5}}, DefaultDuration},
		{"string", &Document{Fields: map[string]interface{}{"duration": "10"}}, DefaultDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, DecodeConfig(tt.doc).Duration)
		})
	}
}

func TestDefaultFeed(t *testing.T) {
	feed := DefaultFeed()
	require.Len(t, feed.Offers, 1)
	require.True(t, feed.Offers[0].IsActive)
	require.Equal(t, "Welcome to our Bakery!", feed.Offers[0].Title)
	require.Equal(t, 8, feed.Duration)
	require.True(t, feed.Fallback)
}
