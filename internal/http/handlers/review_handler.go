package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

// ReviewHandler serves post-collaboration feedback endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	OfferID uuid.UUID `json:"offer_id" binding:"required"`
	Rating  int       `json:"rating" binding:"required"`
	Comment *string   `json:"comment"`
}

// Create leaves a review on an accepted offer.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req createReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), req.OfferID, userID, req.Rating, req.Comment)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListForUser returns the reviews received by a user, with the aggregate
// rating.
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	reviews, err := h.reviews.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}

	average, count, err := h.reviews.Rating(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"average_rating": average,
		"review_count":   count,
	})
}
