package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
)

// VerificationHandler serves the verification state machine endpoints.
type VerificationHandler struct {
	verification *service.VerificationService
}

func NewVerificationHandler(verification *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// Get returns the caller's verification record. 404 until the first
// submission creates it.
func (h *VerificationHandler) Get(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	record, err := h.verification.Get(c.Request.Context(), userID, role)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type submitEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// SubmitEmail stores the address and sends a one-time code.
func (h *VerificationHandler) SubmitEmail(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req submitEmailRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.SubmitEmail(c.Request.Context(), userID, role, req.Email)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail checks the one-time code against the stored address.
func (h *VerificationHandler) VerifyEmail(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req verifyCodeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.VerifyEmailCode(c.Request.Context(), userID, role, req.Email, req.Code)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type submitPhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// SubmitPhone stores the number and sends a one-time code over SMS.
func (h *VerificationHandler) SubmitPhone(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req submitPhoneRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.SubmitPhone(c.Request.Context(), userID, role, req.Phone)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// VerifyPhone checks the one-time code against the stored number.
func (h *VerificationHandler) VerifyPhone(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req verifyCodeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.VerifyPhoneCode(c.Request.Context(), userID, role, req.Phone, req.Code)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// SubmitDocument accepts a multipart form: kind (pan, gst or identity),
// number, and an optional document file.
func (h *VerificationHandler) SubmitDocument(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	kind := c.PostForm("kind")
	number := c.PostForm("number")

	var upload *service.DocumentUpload
	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			common.RespondBadRequest(c, "failed to read uploaded file")
			return
		}
		defer file.Close()
		upload = &service.DocumentUpload{
			FileName: fileHeader.Filename,
			File:     file,
		}
	}

	record, err := h.verification.SubmitDocument(c.Request.Context(), userID, role, kind, number, upload)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type submitPaymentMethodRequest struct {
	Method  string `json:"method" binding:"required"`
	Details string `json:"details" binding:"required"`
}

// SubmitPaymentMethod stores a masked UPI handle or card. Verification of
// the method completes through the checkout webhook.
func (h *VerificationHandler) SubmitPaymentMethod(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var req submitPaymentMethodRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.SubmitPaymentMethod(c.Request.Context(), userID, role, req.Method, req.Details)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListPending returns the admin review queue.
func (h *VerificationHandler) ListPending(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	records, total, err := h.verification.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

type overrideRequest struct {
	Field  string  `json:"field" binding:"required"`
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason"`
}

// Override lets an admin set one sub-status directly.
func (h *VerificationHandler) Override(c *gin.Context) {
	reviewerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	recordID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req overrideRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.verification.AdminOverride(c.Request.Context(), recordID, req.Field, req.Status, req.Reason, reviewerID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
