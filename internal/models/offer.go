package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/validation"
)

// Offer statuses.
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusExpired   = "expired"
	OfferStatusCountered = "countered"
)

// Offer types, derived from the sender's role.
const (
	OfferTypeBrandToCreator = "brand_to_creator"
	OfferTypeCreatorToBrand = "creator_to_brand"
)

// Offer is a proposal of service terms between two parties in a conversation.
type Offer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID    uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Type           string    `db:"type" json:"type"`

	ServiceName  string         `db:"service_name" json:"service_name"`
	Description  string         `db:"description" json:"description"`
	Price        float64        `db:"price" json:"price"`
	Currency     string         `db:"currency" json:"currency"`
	DeliveryDays int            `db:"delivery_days" json:"delivery_days"`
	Revisions    int            `db:"revisions" json:"revisions"`
	Deliverables pq.StringArray `db:"deliverables" json:"deliverables"`
	Terms        *string        `db:"terms" json:"terms,omitempty"`
	ValidUntil   time.Time      `db:"valid_until" json:"valid_until"`

	Status string `db:"status" json:"status"`

	// Counter proposal, present only when status is countered. A single
	// round: the nested proposal replaces the original terms for display,
	// it is not a chain.
	CounterPrice        *float64   `db:"counter_price" json:"counter_price,omitempty"`
	CounterDeliveryDays *int       `db:"counter_delivery_days" json:"counter_delivery_days,omitempty"`
	CounterRevisions    *int       `db:"counter_revisions" json:"counter_revisions,omitempty"`
	CounterTerms        *string    `db:"counter_terms" json:"counter_terms,omitempty"`
	CounterMessage      *string    `db:"counter_message" json:"counter_message,omitempty"`
	CounteredAt         *time.Time `db:"countered_at" json:"countered_at,omitempty"`

	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CounterTermsInput carries the recipient's replacement terms.
type CounterTermsInput struct {
	Price        float64 `json:"price"`
	DeliveryDays int     `json:"delivery_days"`
	Revisions    int     `json:"revisions"`
	Terms        *string `json:"terms,omitempty"`
	Message      *string `json:"message,omitempty"`
}

// NewOffer validates the terms and builds a pending offer. The offer type
// follows the sender's role.
func NewOffer(conversationID, senderID, recipientID uuid.UUID, senderRole string, serviceName, description string, price float64, currency string, deliveryDays, revisions int, deliverables []string, terms *string, validUntil time.Time) (*Offer, error) {
	if err := validation.ValidateLength("service name", serviceName, validation.MinServiceNameLength, validation.MaxServiceNameLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("description", description, 0, validation.MaxOfferDescriptionLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if terms != nil {
		if err := validation.ValidateLength("terms", *terms, 0, validation.MaxOfferTermsLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if len(deliverables) > validation.MaxDeliverablesCount {
		return nil, apperror.New(apperror.ErrCodeValidation, "too many deliverables")
	}
	for _, deliverable := range deliverables {
		if err := validation.ValidateLength("deliverable", deliverable, 1, validation.MaxDeliverableLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if price < 0 || price > validation.MaxPrice {
		return nil, apperror.New(apperror.ErrCodeValidation, "price is out of range")
	}
	if deliveryDays < 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "delivery time must be at least one day")
	}
	if revisions < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "revision count must not be negative")
	}
	if validUntil.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "validity deadline is required")
	}
	if senderID == recipientID {
		return nil, apperror.New(apperror.ErrCodeValidation, "sender and recipient must differ")
	}

	offerType := OfferTypeCreatorToBrand
	if senderRole == RoleBrand {
		offerType = OfferTypeBrandToCreator
	}
	if currency == "" {
		currency = "INR"
	}

	now := time.Now()
	return &Offer{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Type:           offerType,
		ServiceName:    serviceName,
		Description:    description,
		Price:          price,
		Currency:       currency,
		DeliveryDays:   deliveryDays,
		Revisions:      revisions,
		Deliverables:   deliverables,
		Terms:          terms,
		ValidUntil:     validUntil,
		Status:         OfferStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsParticipant reports whether userID is the sender or the recipient.
func (o *Offer) IsParticipant(userID uuid.UUID) bool {
	return userID == o.SenderID || userID == o.RecipientID
}

// IsExpired reports whether the validity deadline has passed.
func (o *Offer) IsExpired(now time.Time) bool {
	return now.After(o.ValidUntil)
}

// respondent returns who may act on the offer in its current state.
// Counters are symmetric: after a counter the original sender answers.
func (o *Offer) respondent() (uuid.UUID, error) {
	switch o.Status {
	case OfferStatusPending:
		return o.RecipientID, nil
	case OfferStatusCountered:
		return o.SenderID, nil
	default:
		return uuid.Nil, apperror.New(apperror.ErrCodeInvalidState, "offer is already "+o.Status)
	}
}

func (o *Offer) guard(callerID uuid.UUID, now time.Time) error {
	responder, err := o.respondent()
	if err != nil {
		return err
	}
	if callerID != responder {
		return apperror.ErrForbidden
	}
	if o.IsExpired(now) {
		return apperror.ErrOfferExpired
	}
	return nil
}

// Accept moves the offer to accepted. Accepting a countered offer applies
// the counter terms to the offer.
func (o *Offer) Accept(callerID uuid.UUID, now time.Time) error {
	if err := o.guard(callerID, now); err != nil {
		return err
	}
	if o.Status == OfferStatusCountered {
		o.applyCounterTerms()
	}
	o.Status = OfferStatusAccepted
	o.RespondedAt = &now
	o.UpdatedAt = now
	return nil
}

// Reject moves the offer to rejected.
func (o *Offer) Reject(callerID uuid.UUID, now time.Time) error {
	if err := o.guard(callerID, now); err != nil {
		return err
	}
	o.Status = OfferStatusRejected
	o.RespondedAt = &now
	o.UpdatedAt = now
	return nil
}

// Counter attaches a single counter proposal. Only the recipient of a
// pending offer may counter; there is no second round.
func (o *Offer) Counter(callerID uuid.UUID, counter CounterTermsInput, now time.Time) error {
	if o.Status != OfferStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "only a pending offer can be countered")
	}
	if callerID != o.RecipientID {
		return apperror.ErrForbidden
	}
	if o.IsExpired(now) {
		return apperror.ErrOfferExpired
	}
	if counter.Price < 0 || counter.Price > validation.MaxPrice {
		return apperror.New(apperror.ErrCodeValidation, "counter price is out of range")
	}
	if counter.DeliveryDays < 1 {
		return apperror.New(apperror.ErrCodeValidation, "counter delivery time must be at least one day")
	}
	if counter.Revisions < 0 {
		return apperror.New(apperror.ErrCodeValidation, "counter revision count must not be negative")
	}

	o.Status = OfferStatusCountered
	o.CounterPrice = &counter.Price
	o.CounterDeliveryDays = &counter.DeliveryDays
	o.CounterRevisions = &counter.Revisions
	o.CounterTerms = counter.Terms
	o.CounterMessage = counter.Message
	o.CounteredAt = &now
	o.UpdatedAt = now
	return nil
}

// MarkExpired flips a pending or countered offer to expired (lazy expiry).
func (o *Offer) MarkExpired(now time.Time) {
	if o.Status == OfferStatusPending || o.Status == OfferStatusCountered {
		o.Status = OfferStatusExpired
		o.UpdatedAt = now
	}
}

func (o *Offer) applyCounterTerms() {
	if o.CounterPrice != nil {
		o.Price = *o.CounterPrice
	}
	if o.CounterDeliveryDays != nil {
		o.DeliveryDays = *o.CounterDeliveryDays
	}
	if o.CounterRevisions != nil {
		o.Revisions = *o.CounterRevisions
	}
	if o.CounterTerms != nil {
		o.Terms = o.CounterTerms
	}
}
