package popup

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberIsPermissive(t *testing.T) {
	assert.Equal(t, 0.0, ParseNumber("abc"))
	assert.Equal(t, 0.0, ParseNumber(""))
	assert.Equal(t, 0.0, ParseNumber("Inf"))
	assert.Equal(t, 15.0, ParseNumber(" 15 "))
	assert.Equal(t, 12.5, ParseNumber("12.5"))
}

func TestFormRoundTripThroughFields(t *testing.T) {
	form := NewOfferForm()
	form.Title = "Croissant Week"
	form.DiscountPercent = "abc"
	form.DiscountCode = " CRUMB10 "

	fields := form.ToFields()
	require.Equal(t, 0.0, fields[FieldDiscountPercent])
	require.Equal(t, "CRUMB10", fields[FieldDiscountCode])

	o := DecodeOffer(Document{ID: MainOfferID, Fields: fields})
	assert.Equal(t, "Croissant Week", o.Title)
	assert.Equal(t, 0.0, o.DiscountPercent)
	assert.True(t, o.HasCode())

	again := FormFromOffer(o, PopupConfig{Duration: 12})
	assert.Equal(t, "0", again.DiscountPercent.String())
	assert.Equal(t, "12", again.Duration.String())
}

func TestPreviewDuration(t *testing.T) {
	assert.Equal(t, DefaultDuration, OfferForm{Duration: "nope"}.PreviewDuration())
	assert.Equal(t, 15, OfferForm{Duration: "15"}.PreviewDuration())
	assert.Equal(t, 7, OfferForm{Duration: "7.9"}.PreviewDuration())
	assert.Equal(t, DefaultDuration, OfferForm{Duration: "-5"}.PreviewDuration())
	assert.Equal(t, math.MaxInt32, OfferForm{Duration: "1e300"}.PreviewDuration())
}

func TestNumberInputDecodesAnyJSONScalar(t *testing.T) {
	tests := []struct {
		body    string
		percent float64
		raw     string
	}{
		{`{"discountPercent": 15}`, 15, "15"},
		{`{"discountPercent": 12.5}`, 12.5, "12.5"},
		{`{"discountPercent": "30"}`, 30, "30"},
		{`{"discountPercent": "abc"}`, 0, "abc"},
		{`{"discountPercent": null}`, 0, ""},
		{`{"discountPercent": true}`, 0, ""},
		{`{"discountPercent": {"v": 1}}`, 0, ""},
		{`{}`, 0, ""},
	}

	for _, tt := range tests {
		var form OfferForm
		require.NoError(t, json.Unmarshal([]byte(tt.body), &form), tt.body)
		assert.Equal(t, tt.raw, form.DiscountPercent.String(), tt.body)
		assert.Equal(t, tt.percent, form.DiscountPercent.Float(), tt.body)
	}

	var req UpdateConfigRequest
	require.NoError(t, json.Unmarshal([]byte(`{"duration": 12}`), &req))
	assert.Equal(t, "12", req.Duration.String())
}

func TestBuildView(t *testing.T) {
	o := DecodeOffer(Document{ID: "o1", Fields: map[string]interface{}{
		"discountPercent": 25,
		"discountText":    "OFF",
		"discountCode":    "BAKE25",
	}})

	v := BuildView(o, 4, 8, 1, 3)
	assert.Equal(t, "25% OFF", v.DiscountBadge)
	assert.True(t, v.ShowCode)
	assert.Equal(t, 50.0, v.Progress)
	assert.Equal(t, []bool{false, true, false}, v.Dots)

	single := BuildView(o, 8, 8, 0, 1)
	assert.Nil(t, single.Dots)
	assert.Equal(t, 100.0, single.Progress)
}
