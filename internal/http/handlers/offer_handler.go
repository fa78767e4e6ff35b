package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

// OfferHandler serves the offer negotiation endpoints.
type OfferHandler struct {
	offers *service.OfferService
}

func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

type createOfferRequest struct {
	RecipientID  uuid.UUID `json:"recipient_id" binding:"required"`
	ServiceName  string    `json:"service_name" binding:"required"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	DeliveryDays int       `json:"delivery_days" binding:"required"`
	Revisions    int       `json:"revisions"`
	Deliverables []string  `json:"deliverables"`
	Terms        *string   `json:"terms"`
	ValidUntil   time.Time `json:"valid_until" binding:"required"`
}

// Create sends a new offer to the counterparty.
func (h *OfferHandler) Create(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req createOfferRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), userID, role, service.CreateOfferInput{
		RecipientID:  req.RecipientID,
		ServiceName:  req.ServiceName,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		DeliveryDays: req.DeliveryDays,
		Revisions:    req.Revisions,
		Deliverables: req.Deliverables,
		Terms:        req.Terms,
		ValidUntil:   req.ValidUntil,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// Get returns one offer to its participants.
func (h *OfferHandler) Get(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.offers.GetByID(c.Request.Context(), offerID, userID, role)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// Accept resolves the offer in favour of the current proposal.
func (h *OfferHandler) Accept(c *gin.Context) {
	h.respond(c, func(offerID, userID uuid.UUID) (*models.Offer, error) {
		return h.offers.Accept(c.Request.Context(), offerID, userID)
	})
}

// Reject declines the current proposal.
func (h *OfferHandler) Reject(c *gin.Context) {
	h.respond(c, func(offerID, userID uuid.UUID) (*models.Offer, error) {
		return h.offers.Reject(c.Request.Context(), offerID, userID)
	})
}

// Counter attaches the recipient's replacement terms.
func (h *OfferHandler) Counter(c *gin.Context) {
	var req models.CounterTermsInput
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	h.respond(c, func(offerID, userID uuid.UUID) (*models.Offer, error) {
		return h.offers.Counter(c.Request.Context(), offerID, userID, req)
	})
}

// ListMine returns the caller's offers, filtered by status and type.
func (h *OfferHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	offers, err := h.offers.ListForUser(c.Request.Context(), userID, repository.OfferFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers, "limit": limit, "offset": offset})
}

// ListByConversation returns a conversation's offer history.
func (h *OfferHandler) ListByConversation(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offers, err := h.offers.ListByConversation(c.Request.Context(), conversationID, userID, role)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *OfferHandler) respond(c *gin.Context, do func(offerID, userID uuid.UUID) (*models.Offer, error)) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := do(offerID, userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
