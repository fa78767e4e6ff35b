package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

// CheckoutHandler serves gateway orders and the payment webhook.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type createOfferOrderRequest struct {
	OfferID uuid.UUID `json:"offer_id" binding:"required"`
}

// CreateOfferOrder opens a gateway order to pay an accepted offer.
func (h *CheckoutHandler) CreateOfferOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req createOfferOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.checkout.CreateOfferOrder(c.Request.Context(), userID, req.OfferID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

type createMethodOrderRequest struct {
	Method string `json:"method" binding:"required"`
}

// CreateMethodVerificationOrder opens a nominal gateway order used to
// confirm a submitted payment method.
func (h *CheckoutHandler) CreateMethodVerificationOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req createMethodOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.checkout.CreateMethodVerificationOrder(c.Request.Context(), userID, req.Method)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// Webhook is the gateway's signed payment confirmation callback. It is not
// authenticated with JWT; the HMAC signature is the proof of origin.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	var in service.WebhookInput
	if err := common.BindAndValidate(c, &in); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.checkout.HandleWebhook(c.Request.Context(), in); err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Get returns one checkout order.
func (h *CheckoutHandler) Get(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.checkout.Get(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// List returns the caller's checkout orders.
func (h *CheckoutHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.checkout.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "limit": limit, "offset": offset})
}
