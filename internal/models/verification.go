package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sub-verification statuses.
const (
	SubStatusPending      = "pending"
	SubStatusProcessing   = "processing"
	SubStatusVerified     = "verified"
	SubStatusRejected     = "rejected"
	SubStatusNotSubmitted = "not_submitted"
)

// Aggregate statuses.
const (
	OverallStatusPending  = "pending"
	OverallStatusVerified = "verified"
	OverallStatusRejected = "rejected"
)

// Sub-verification field names used by document submission and admin review.
const (
	VerificationFieldEmail    = "email"
	VerificationFieldPhone    = "phone"
	VerificationFieldPAN      = "pan"
	VerificationFieldGST      = "gst"
	VerificationFieldIdentity = "identity"
	VerificationFieldUPI      = "upi"
	VerificationFieldCard     = "card"
)

// Card brands derived from the card number's leading digit.
const (
	CardBrandVisa       = "Visa"
	CardBrandMastercard = "Mastercard"
	CardBrandAmex       = "American Express"
	CardBrandUnknown    = "Unknown"
)

// VerificationRecord holds the per-user verification sub-state.
// One record per user per role; the brand role keeps its GST registration
// in the identity slot, which additionally allows not_submitted.
type VerificationRecord struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Role   string    `db:"role" json:"role"`

	EmailStatus       string     `db:"email_status" json:"email_status"`
	Email             *string    `db:"email" json:"email,omitempty"`
	EmailCode         *string    `db:"email_code" json:"-"`
	EmailCodeIssuedAt *time.Time `db:"email_code_issued_at" json:"-"`
	EmailVerifiedAt   *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	EmailRejectReason *string    `db:"email_reject_reason" json:"email_reject_reason,omitempty"`

	PhoneStatus       string     `db:"phone_status" json:"phone_status"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	PhoneCode         *string    `db:"phone_code" json:"-"`
	PhoneCodeIssuedAt *time.Time `db:"phone_code_issued_at" json:"-"`
	PhoneVerifiedAt   *time.Time `db:"phone_verified_at" json:"phone_verified_at,omitempty"`
	PhoneRejectReason *string    `db:"phone_reject_reason" json:"phone_reject_reason,omitempty"`

	PANStatus      string     `db:"pan_status" json:"pan_status"`
	PANNumber      *string    `db:"pan_number" json:"pan_number,omitempty"`
	PANDocumentURL *string    `db:"pan_document_url" json:"pan_document_url,omitempty"`
	PANVerifiedAt  *time.Time `db:"pan_verified_at" json:"pan_verified_at,omitempty"`

	IdentityStatus      string     `db:"identity_status" json:"identity_status"`
	IdentityNumber      *string    `db:"identity_number" json:"identity_number,omitempty"`
	IdentityDocumentURL *string    `db:"identity_document_url" json:"identity_document_url,omitempty"`
	IdentityVerifiedAt  *time.Time `db:"identity_verified_at" json:"identity_verified_at,omitempty"`

	UPIStatus     string     `db:"upi_status" json:"upi_status"`
	UPIHandle     *string    `db:"upi_handle" json:"upi_handle,omitempty"`
	UPIVerifiedAt *time.Time `db:"upi_verified_at" json:"upi_verified_at,omitempty"`

	CardStatus     string     `db:"card_status" json:"card_status"`
	CardLast4      *string    `db:"card_last4" json:"card_last4,omitempty"`
	CardBrand      *string    `db:"card_brand" json:"card_brand,omitempty"`
	CardVerifiedAt *time.Time `db:"card_verified_at" json:"card_verified_at,omitempty"`

	OverallStatus string `db:"overall_status" json:"overall_status"`

	ReviewedBy *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewVerificationRecord returns a fresh record with every sub-status pending.
// Brands start with the GST slot at not_submitted.
func NewVerificationRecord(userID uuid.UUID, role string) *VerificationRecord {
	identityStatus := SubStatusPending
	if role == RoleBrand {
		identityStatus = SubStatusNotSubmitted
	}
	v := &VerificationRecord{
		UserID:         userID,
		Role:           role,
		EmailStatus:    SubStatusPending,
		PhoneStatus:    SubStatusPending,
		PANStatus:      SubStatusPending,
		IdentityStatus: identityStatus,
		UPIStatus:      SubStatusPending,
		CardStatus:     SubStatusPending,
	}
	v.Recompute()
	return v
}

// Recompute derives the aggregate from the sub-statuses. It must run before
// every persist; the aggregate is never settable on its own.
func (v *VerificationRecord) Recompute() {
	v.OverallStatus = ComputeOverallStatus(
		v.EmailStatus, v.PhoneStatus, v.PANStatus, v.IdentityStatus,
		v.UPIStatus, v.CardStatus,
	)
}

// ComputeOverallStatus is the pure aggregation rule:
// verified iff every required sub-status is verified and at least one payment
// method is verified; rejected iff any required sub-status is rejected or both
// payment methods are rejected; pending otherwise.
func ComputeOverallStatus(email, phone, pan, identity, upi, card string) string {
	required := []string{email, phone, pan, identity}

	paymentOK := upi == SubStatusVerified || card == SubStatusVerified
	paymentBad := upi == SubStatusRejected && card == SubStatusRejected

	allVerified := true
	anyRejected := false
	for _, s := range required {
		if s != SubStatusVerified {
			allVerified = false
		}
		if s == SubStatusRejected {
			anyRejected = true
		}
	}

	switch {
	case allVerified && paymentOK:
		return OverallStatusVerified
	case anyRejected || paymentBad:
		return OverallStatusRejected
	default:
		return OverallStatusPending
	}
}

// ValidSubStatus reports whether s is a legal sub-status for the given field.
// Only the brand GST slot accepts not_submitted.
func ValidSubStatus(field, s string) bool {
	switch s {
	case SubStatusPending, SubStatusProcessing, SubStatusVerified, SubStatusRejected:
		return true
	case SubStatusNotSubmitted:
		return field == VerificationFieldGST
	}
	return false
}

// CardBrandFromNumber derives the card brand from the leading digit.
func CardBrandFromNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return CardBrandUnknown
	}
	switch number[0] {
	case '4':
		return CardBrandVisa
	case '5':
		return CardBrandMastercard
	case '3':
		return CardBrandAmex
	default:
		return CardBrandUnknown
	}
}

// CardLast4FromNumber returns the final four digits of a card number.
// The full number is never persisted.
func CardLast4FromNumber(number string) string {
	digits := make([]byte, 0, len(number))
	for i := 0; i < len(number); i++ {
		if number[i] >= '0' && number[i] <= '9' {
			digits = append(digits, number[i])
		}
	}
	if len(digits) < 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}
