// internal/domain/popup/document.go
package popup

import (
	"encoding/json"
	"math"
	"strings"
)

// Document is a schemaless record as returned by the offer store.
type Document struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// DecodeOffer maps a stored document onto an Offer, applying display
// fallbacks for absent or empty fields. Only a boolean true marks an offer
// active.
func DecodeOffer(doc Document) Offer {
	f := doc.Fields

	o := Offer{
		ID:                 doc.ID,
		Title:              stringOr(f, FieldTitle, DefaultTitle),
		Description:        stringOr(f, FieldDescription, DefaultDescription),
		ButtonText:         stringOr(f, FieldButtonText, DefaultButtonText),
		ActionURL:          stringOr(f, FieldActionURL, DefaultActionURL),
		DiscountText:       stringOr(f, FieldDiscountText, DefaultDiscountText),
		DiscountConditions: stringOr(f, FieldDiscountConditions, DefaultDiscountConditions),
		DiscountCode:       stringOr(f, FieldDiscountCode, ""),
		Image:              stringOr(f, FieldImage, DefaultImage),
		DiscountPercent:    DefaultDiscountPercent,
	}

	if v, ok := f[FieldDiscountPercent]; ok {
		if n, ok := toFloat(v); ok {
			o.DiscountPercent = n
		}
	}
	if v, ok := f[FieldIsActive].(bool); ok {
		o.IsActive = v
	}

	return o
}

// DecodeConfig extracts the countdown duration. Anything that is not a
// positive whole number yields DefaultDuration.
func DecodeConfig(doc *Document) PopupConfig {
	if doc == nil {
		return PopupConfig{Duration: DefaultDuration}
	}

	v, ok := doc.Fields[FieldDuration]
	if !ok {
		return PopupConfig{Duration: DefaultDuration}
	}

	n, ok := toFloat(v)
	if !ok || n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
		return PopupConfig{Duration: DefaultDuration}
	}

	return PopupConfig{Duration: int(n)}
}

// ConfigFields is the stored representation of a PopupConfig.
func ConfigFields(cfg PopupConfig) map[string]interface{} {
	return map[string]interface{}{
		FieldDuration: cfg.Duration,
	}
}

func stringOr(f map[string]interface{}, key, fallback string) string {
	s, ok := f[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
