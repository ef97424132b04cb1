// internal/domain/popup/dto.go
package popup

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumberInput is a numeric form field kept as typed. It decodes from a JSON
// string, a JSON number or null, so a client may send 15 or "15" or "15%".
// Coercion happens later through ParseNumber.
type NumberInput string

func (n *NumberInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*n = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberInput(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*n = NumberInput(data)
	default:
		// Booleans, objects and arrays are not numbers; they coerce to 0.
		*n = ""
	}
	return nil
}

func (n NumberInput) String() string { return string(n) }

// Float is the permissive numeric value of the input.
func (n NumberInput) Float() float64 { return ParseNumber(string(n)) }

// OfferForm holds the authoring fields exactly as the operator typed them.
// Numeric inputs stay strings until ToFields so that partial input never
// fails validation.
type OfferForm struct {
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	ButtonText         string      `json:"buttonText"`
	ActionURL          string      `json:"actionUrl"`
	DiscountPercent    NumberInput `json:"discountPercent"`
	DiscountText       string      `json:"discountText"`
	DiscountConditions string      `json:"discountConditions"`
	DiscountCode       string      `json:"discountCode"`
	Image              string      `json:"image"`
	IsActive           bool        `json:"isActive"`
	Duration           NumberInput `json:"duration"`
}

// NewOfferForm seeds a form for a new main offer.
func NewOfferForm() OfferForm {
	return OfferForm{
		Title:              DefaultTitle,
		Description:        DefaultDescription,
		ButtonText:         DefaultButtonText,
		ActionURL:          DefaultActionURL,
		DiscountPercent:    NumberInput(formatNumber(DefaultDiscountPercent)),
		DiscountText:       DefaultDiscountText,
		DiscountConditions: DefaultDiscountConditions,
		Image:              DefaultImage,
		IsActive:           true,
		Duration:           NumberInput(strconv.Itoa(DefaultDuration)),
	}
}

// FormFromOffer seeds a form with an existing offer's values.
func FormFromOffer(o Offer, cfg PopupConfig) OfferForm {
	return OfferForm{
		Title:              o.Title,
		Description:        o.Description,
		ButtonText:         o.ButtonText,
		ActionURL:          o.ActionURL,
		DiscountPercent:    NumberInput(formatNumber(o.DiscountPercent)),
		DiscountText:       o.DiscountText,
		DiscountConditions: o.DiscountConditions,
		DiscountCode:       o.DiscountCode,
		Image:              o.Image,
		IsActive:           o.IsActive,
		Duration:           NumberInput(strconv.Itoa(cfg.Duration)),
	}
}

// ToFields converts the form into stored offer fields.
func (f OfferForm) ToFields() map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:              f.Title,
		FieldDescription:        f.Description,
		FieldButtonText:         f.ButtonText,
		FieldActionURL:          f.ActionURL,
		FieldDiscountPercent:    f.DiscountPercent.Float(),
		FieldDiscountText:       f.DiscountText,
		FieldDiscountConditions: f.DiscountConditions,
		FieldDiscountCode:       strings.TrimSpace(f.DiscountCode),
		FieldImage:              f.Image,
		FieldIsActive:           f.IsActive,
	}
}

// PreviewDuration is the countdown length the preview should display,
// truncated to a whole number of seconds in [1, MaxInt32].
func (f OfferForm) PreviewDuration() int {
	n := math.Trunc(f.Duration.Float())
	switch {
	case n < 1:
		return DefaultDuration
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int(n)
}

// ParseNumber parses operator input permissively: anything that is not a
// finite number becomes 0.
func ParseNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// SaveAck is returned after a successful save.
type SaveAck struct {
	ID      string  `json:"id"`
	Created bool    `json:"created"`
	Message string  `json:"message"`
	Offers  []Offer `json:"offers"`
}

type UpdateConfigRequest struct {
	Duration NumberInput `json:"duration" binding:"required"`
}
