// internal/domain/popup/view.go
package popup

import "fmt"

// PopupView is everything a client needs to draw the popup for one frame.
// Live sessions and the authoring preview both go through BuildView.
type PopupView struct {
	OfferID            string  `json:"offerId"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	ButtonText         string  `json:"buttonText"`
	ActionURL          string  `json:"actionUrl"`
	Image              string  `json:"image"`
	DiscountBadge      string  `json:"discountBadge"`
	DiscountConditions string  `json:"discountConditions"`
	DiscountCode       string  `json:"discountCode,omitempty"`
	ShowCode           bool    `json:"showCode"`
	TimeLeft           int     `json:"timeLeft"`
	Duration           int     `json:"duration"`
	Progress           float64 `json:"progress"`
	Index              int     `json:"index"`
	Count              int     `json:"count"`
	Dots               []bool  `json:"dots,omitempty"`
}

func BuildView(o Offer, timeLeft, duration, index, count int) PopupView {
	v := PopupView{
		OfferID:            o.ID,
		Title:              o.Title,
		Description:        o.Description,
		ButtonText:         o.ButtonText,
		ActionURL:          o.ActionURL,
		Image:              o.Image,
		DiscountBadge:      fmt.Sprintf("%s%% %s", formatNumber(o.DiscountPercent), o.DiscountText),
		DiscountConditions: o.DiscountConditions,
		DiscountCode:       o.DiscountCode,
		ShowCode:           o.HasCode(),
		TimeLeft:           timeLeft,
		Duration:           duration,
		Index:              index,
		Count:              count,
	}

	if duration > 0 {
		v.Progress = float64(timeLeft) / float64(duration) * 100
	}

	// Rotation dots only appear when there is something to rotate through.
	if count > 1 {
		v.Dots = make([]bool, count)
		v.Dots[index] = true
	}

	return v
}
