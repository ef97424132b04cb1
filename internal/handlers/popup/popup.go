// internal/handlers/popup/popup.go
package popup

import (
	"context"
	"net/http"

	"bakery-popup/internal/domain/popup"
	"bakery-popup/internal/pkg/response"
	service "bakery-popup/internal/service/popup"

	"github.com/gin-gonic/gin"
)

// FeedNotifier is told when operators change what the popup shows.
type FeedNotifier interface {
	BroadcastFeedUpdated()
}

// Authoring is the operator-facing offer editor.
type Authoring interface {
	Save(ctx context.Context, form popup.OfferForm) (*popup.SaveAck, error)
	ListOffers(ctx context.Context) ([]popup.Offer, error)
	EditForm(ctx context.Context) (popup.OfferForm, bool, error)
	Preview(form popup.OfferForm) popup.PopupView
	GetConfig(ctx context.Context) (popup.PopupConfig, error)
	SaveConfig(ctx context.Context, raw string) (popup.PopupConfig, error)
}

type PopupHandler struct {
	loader    service.Loader
	authoring Authoring
	notifier  FeedNotifier
}

func NewPopupHandler(loader service.Loader, authoring Authoring, notifier FeedNotifier) *PopupHandler {
	return &PopupHandler{
		loader:    loader,
		authoring: authoring,
		notifier:  notifier,
	}
}

// ========== Storefront Endpoints ==========

// GetFeed returns what the next popup activation would show. It never fails:
// store problems surface as the fallback welcome offer.
func (h *PopupHandler) GetFeed(c *gin.Context) {
	feed := h.loader.Load(c.Request.Context())
	response.Success(c, http.StatusOK, "offer feed retrieved", feed)
}

// ========== Operator Endpoints ==========

func (h *PopupHandler) ListOffers(c *gin.Context) {
	offers, err := h.authoring.ListOffers(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list offers", err)
		return
	}

	response.Success(c, http.StatusOK, "offers retrieved", gin.H{
		"offers": offers,
		"total":  len(offers),
	})
}

// GetEditForm seeds the editor with the main offer, or defaults when none exists.
func (h *PopupHandler) GetEditForm(c *gin.Context) {
	form, exists, err := h.authoring.EditForm(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load offer form", err)
		return
	}

	response.Success(c, http.StatusOK, "offer form retrieved", gin.H{
		"form":    form,
		"exists":  exists,
		"preview": h.authoring.Preview(form),
	})
}

// SaveMainOffer upserts the main offer. On failure the submitted form is
// echoed back so the operator's edits survive a retry.
func (h *PopupHandler) SaveMainOffer(c *gin.Context) {
	var form popup.OfferForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	ack, err := h.authoring.Save(c.Request.Context(), form)
	if err != nil {
		response.FromError(c, "failed to save offer", err, gin.H{"form": form})
		return
	}

	if h.notifier != nil {
		h.notifier.BroadcastFeedUpdated()
	}

	status := http.StatusOK
	if ack.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, ack.Message, ack)
}

// Preview renders a form without touching the store.
func (h *PopupHandler) Preview(c *gin.Context) {
	var form popup.OfferForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	response.Success(c, http.StatusOK, "preview rendered", h.authoring.Preview(form))
}

func (h *PopupHandler) GetConfig(c *gin.Context) {
	cfg, err := h.authoring.GetConfig(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to get popup config", err)
		return
	}

	response.Success(c, http.StatusOK, "popup config retrieved", cfg)
}

func (h *PopupHandler) UpdateConfig(c *gin.Context) {
	var req popup.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	cfg, err := h.authoring.SaveConfig(c.Request.Context(), req.Duration.String())
	if err != nil {
		response.FromError(c, "failed to update popup config", err)
		return
	}

	if h.notifier != nil {
		h.notifier.BroadcastFeedUpdated()
	}

	response.Success(c, http.StatusOK, "popup config updated", cfg)
}
