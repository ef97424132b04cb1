// internal/domain/popup/entity.go
package popup

import "time"

// Store layout
const (
	CollectionOffers   = "popupOffers"
	CollectionConfig   = "config"
	MainOfferID        = "mainOffer"
	ConfigKeyPopupHero = "popupHero"
)

// Session timing
const (
	CountdownInterval = time.Second
	RotationInterval  = 4 * time.Second
	CloseGrace        = 500 * time.Millisecond
)

// Display fallbacks used when a stored field is absent or empty.
const (
	DefaultTitle              = "Special Offer"
	DefaultDescription        = "Fresh from our ovens, baked this morning just for you."
	DefaultButtonText         = "Shop Now"
	DefaultActionURL          = "/products"
	DefaultDiscountPercent    = 20.0
	DefaultDiscountText       = "OFF"
	DefaultDiscountConditions = "On your next order"
	DefaultImage              = "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=800"
	DefaultDuration           = 8
)

// Document field names, shared by every store backend.
const (
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldButtonText         = "buttonText"
	FieldActionURL          = "actionUrl"
	FieldDiscountPercent    = "discountPercent"
	FieldDiscountText       = "discountText"
	FieldDiscountConditions = "discountConditions"
	FieldDiscountCode       = "discountCode"
	FieldIsActive           = "isActive"
	FieldImage              = "image"
	FieldDuration           = "duration"
)

type Offer struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	ButtonText         string  `json:"buttonText"`
	ActionURL          string  `json:"actionUrl"`
	DiscountPercent    float64 `json:"discountPercent"`
	DiscountText       string  `json:"discountText"`
	DiscountConditions string  `json:"discountConditions"`
	DiscountCode       string  `json:"discountCode,omitempty"`
	IsActive           bool    `json:"isActive"`
	Image              string  `json:"image"`
}

// HasCode reports whether the code badge should be shown.
func (o Offer) HasCode() bool {
	return o.DiscountCode != ""
}

type PopupConfig struct {
	Duration int `json:"duration"`
}

// Feed is the result of one offer feed load.
type Feed struct {
	Offers   []Offer `json:"offers"`
	Duration int     `json:"duration"`
	Fallback bool    `json:"fallback"`
}

// DefaultOffer is shown when the offer feed cannot be loaded.
func DefaultOffer() Offer {
	return Offer{
		ID:                 "welcome",
		Title:              "Welcome to our Bakery!",
		Description:        "Discover bread, pastries and cakes baked fresh every morning.",
		ButtonText:         "Explore the Menu",
		ActionURL:          DefaultActionURL,
		DiscountPercent:    DefaultDiscountPercent,
		DiscountText:       DefaultDiscountText,
		DiscountConditions: DefaultDiscountConditions,
		IsActive:           true,
		Image:              DefaultImage,
	}
}

// DefaultFeed is the degraded feed: the welcome offer and the default duration.
func DefaultFeed() Feed {
	return Feed{
		Offers:   []Offer{DefaultOffer()},
		Duration: DefaultDuration,
		Fallback: true,
	}
}
