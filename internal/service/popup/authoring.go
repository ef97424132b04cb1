// internal/service/popup/authoring.go
package popup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/metrics"
	xerrors "bakery-popup/internal/pkg/errors"

	"go.uber.org/zap"
)

const SaveSuccessMessage = "Offer saved successfully!"

// AuthoringService backs the operator's offer editor.
type AuthoringService struct {
	store    popup.DocumentReader
	upserter popup.Upserter
	logger   *zap.Logger
	metrics  *metrics.PopupMetrics
}

func NewAuthoringService(store popup.DocumentReader, upserter popup.Upserter, logger *zap.Logger, m *metrics.PopupMetrics) *AuthoringService {
	return &AuthoringService{
		store:    store,
		upserter: upserter,
		logger:   logger,
		metrics:  m,
	}
}

// Save writes the form to the main offer document, creating it on first save.
// On failure nothing is returned besides the error so the caller keeps the
// operator's form untouched.
func (s *AuthoringService) Save(ctx context.Context, form popup.OfferForm) (*popup.SaveAck, error) {
	res, err := s.upserter.UpsertIfAbsent(ctx, popup.CollectionOffers, popup.MainOfferID, form.ToFields())
	if err != nil {
		s.metrics.Save("failed")
		s.logger.Error("failed to save main offer", zap.Error(err))
		return nil, fmt.Errorf("failed to save offer: %w", err)
	}

	if res.Created {
		s.metrics.Save("created")
	} else {
		s.metrics.Save("updated")
	}
	s.logger.Info("main offer saved", zap.Bool("created", res.Created))

	offers, err := s.ListOffers(ctx)
	if err != nil {
		// The write went through; an empty list just means the editor shows stale data.
		s.logger.Warn("failed to reload offers after save", zap.Error(err))
		offers = []popup.Offer{}
	}

	return &popup.SaveAck{
		ID:      popup.MainOfferID,
		Created: res.Created,
		Message: SaveSuccessMessage,
		Offers:  offers,
	}, nil
}

// ListOffers returns every stored offer, active or not, in store order.
func (s *AuthoringService) ListOffers(ctx context.Context) ([]popup.Offer, error) {
	docs, err := s.store.List(ctx, popup.CollectionOffers)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	offers := make([]popup.Offer, 0, len(docs))
	for _, doc := range docs {
		offers = append(offers, popup.DecodeOffer(doc))
	}
	return offers, nil
}

// EditForm seeds the editor. exists is false when there is no main offer
// yet, in which case the form carries the defaults.
func (s *AuthoringService) EditForm(ctx context.Context) (form popup.OfferForm, exists bool, err error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return popup.OfferForm{}, false, err
	}

	doc, err := s.store.Get(ctx, popup.CollectionOffers, popup.MainOfferID)
	if errors.Is(err, xerrors.ErrNotFound) {
		form = popup.NewOfferForm()
		form.Duration = popup.NumberInput(strconv.Itoa(cfg.Duration))
		return form, false, nil
	}
	if err != nil {
		return popup.OfferForm{}, false, fmt.Errorf("failed to get main offer: %w", err)
	}

	return popup.FormFromOffer(popup.DecodeOffer(*doc), cfg), true, nil
}

// Preview renders the form exactly as a live session would show it on its
// first frame. It never touches the store.
func (s *AuthoringService) Preview(form popup.OfferForm) popup.PopupView {
	return PreviewView(form)
}

// PreviewView is the pure form-to-view function behind Preview.
func PreviewView(form popup.OfferForm) popup.PopupView {
	doc := popup.Document{ID: popup.MainOfferID, Fields: form.ToFields()}
	d := form.PreviewDuration()
	return popup.BuildView(popup.DecodeOffer(doc), d, d, 0, 1)
}

func (s *AuthoringService) GetConfig(ctx context.Context) (popup.PopupConfig, error) {
	doc, err := s.store.Get(ctx, popup.CollectionConfig, popup.ConfigKeyPopupHero)
	if errors.Is(err, xerrors.ErrNotFound) {
		return popup.DecodeConfig(nil), nil
	}
	if err != nil {
		return popup.PopupConfig{}, fmt.Errorf("failed to get popup config: %w", err)
	}
	return popup.DecodeConfig(doc), nil
}

// SaveConfig stores the countdown duration. Unlike offer fields, the
// duration must be a positive whole number.
func (s *AuthoringService) SaveConfig(ctx context.Context, raw string) (popup.PopupConfig, error) {
	n := popup.ParseNumber(raw)
	if n < 1 || n > math.MaxInt32 || n != math.Trunc(n) {
		return popup.PopupConfig{}, fmt.Errorf("%w: duration must be a positive whole number", xerrors.ErrInvalidInput)
	}

	cfg := popup.PopupConfig{Duration: int(n)}
	if _, err := s.upserter.UpsertIfAbsent(ctx, popup.CollectionConfig, popup.ConfigKeyPopupHero, popup.ConfigFields(cfg)); err != nil {
		s.logger.Error("failed to save popup config", zap.Error(err))
		return popup.PopupConfig{}, fmt.Errorf("failed to save popup config: %w", err)
	}

	s.logger.Info("popup config saved", zap.Int("duration", cfg.Duration))
	return cfg, nil
}
